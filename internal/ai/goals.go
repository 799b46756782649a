package ai

import (
	"github.com/annelo/rwsim/internal/objectmanager"
)

// followDistance is how far a follower lets its leader get before walking.
const followDistance = 3.0

// SetGoal replaces the controller's goal.
func (c *CharacterController) SetGoal(g Goal) {
	c.goal = g
}

// Goal returns the current goal.
func (c *CharacterController) Goal() Goal {
	return c.goal
}

// SetLeader makes the character follow the object with id.
func (c *CharacterController) SetLeader(id objectmanager.ID) {
	c.leader = id
	c.goal = GoalFollowLeader
}

// Leader returns the followed object id.
func (c *CharacterController) Leader() objectmanager.ID {
	return c.leader
}

// SetTargetNode makes the character walk to a path node.
func (c *CharacterController) SetTargetNode(id objectmanager.ID) {
	c.targetNode = id
	c.goal = GoalGoToNode
}

// UpdateGoal turns the goal into activities. It only queues work while the
// character is idle, and drops the goal once its target is gone.
func (c *CharacterController) UpdateGoal(om *objectmanager.ObjectManager) {
	switch c.goal {
	case GoalFollowLeader:
		leader, err := om.Get(c.leader)
		if err != nil {
			c.goal = GoalNone
			return
		}
		if c.queue.Current() != nil {
			return
		}
		target := leader.Position()
		if horizontal(target.Sub(c.character.Position())).Len() > followDistance {
			c.SetNextActivity(&GoTo{Target: target})
		}

	case GoalGoToNode:
		node, err := om.Get(c.targetNode)
		if err != nil {
			c.goal = GoalNone
			return
		}
		if c.queue.Current() != nil {
			return
		}
		target := node.Position()
		if horizontal(target.Sub(c.character.Position())).Len() < goToArrivalDistance {
			c.goal = GoalNone
			return
		}
		c.SetNextActivity(&GoTo{Target: target})
	}
}
