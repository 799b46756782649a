package service

import (
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/annelo/rwsim/internal/gameloop"
	"github.com/annelo/rwsim/internal/plugin"
)

// broadcastWorldEvent hands an event to plugin hooks and every watcher.
func (s *InspectorService) broadcastWorldEvent(event gameloop.WorldEvent) {
	s.registry.Fire(plugin.HookWorldEvent, event)

	msg, err := eventToStruct(event)
	if err != nil {
		s.logger.Warnf("Failed to encode event %s: %v", event.Type, err)
		return
	}
	s.logger.Debugf("World event: %s %s", event.Type, event.Message)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, w := range s.watchers {
		w.send(event.Type, msg)
	}
}

func eventToStruct(e gameloop.WorldEvent) (*structpb.Struct, error) {
	fields := map[string]interface{}{
		"type":      e.Type.String(),
		"game_time": e.GameTime.Seconds(),
		"message":   e.Message,
	}
	if len(e.Fields) > 0 {
		extra := make(map[string]interface{}, len(e.Fields))
		for k, v := range e.Fields {
			extra[k] = v
		}
		fields["fields"] = extra
	}
	return structpb.NewStruct(fields)
}

func summaryToStruct(s gameloop.Summary) (*structpb.Struct, error) {
	texts := make([]interface{}, len(s.Texts))
	for i, t := range s.Texts {
		texts[i] = t
	}
	return structpb.NewStruct(map[string]interface{}{
		"steps":       s.Steps,
		"time_scale":  s.TimeScale,
		"state":       s.State,
		"focused":     s.Focused,
		"game_time":   s.GameTime.Seconds(),
		"clock":       s.Clock,
		"weather":     s.Weather,
		"pedestrians": s.Pedestrians,
		"vehicles":    s.Vehicles,
		"pickups":     s.Pickups,
		"effects":     s.Effects,
		"ambient":     s.Ambient,
		"cutscene":    s.Cutscene,
		"player": map[string]interface{}{
			"position": []interface{}{s.PlayerPosition[0], s.PlayerPosition[1], s.PlayerPosition[2]},
			"activity": s.PlayerActivity,
			"vehicle":  s.PlayerVehicle,
			"ammo":     s.PlayerAmmo,
		},
		"texts": texts,
	})
}
