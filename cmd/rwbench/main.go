package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/annelo/rwsim/internal/service"
)

var (
	serverAddr   = flag.String("addr", "localhost:50051", "gRPC адрес игры")
	clientsCount = flag.Int("n", 50, "Количество эмулируемых клиентов")
	duration     = flag.Duration("duration", 30*time.Second, "Длительность теста")
	spawn        = flag.Bool("spawn", false, "Иногда спавнить машины командой spawn")
)

type counters struct {
	polls, commands, events, errors atomic.Int64
}

func main() {
	flag.Parse()
	log.Printf("Запускаем rwbench: %d клиентов на %s в течение %s", *clientsCount, *serverAddr, *duration)

	conn, err := grpc.NewClient(*serverAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("dial error: %v", err)
	}
	defer conn.Close()
	client := service.NewInspectorClient(conn)

	var wg sync.WaitGroup
	var c counters
	stopCtx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	for i := 0; i < *clientsCount; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			runWatcher(stopCtx, client, id, &c)
		}(i)
		go func(id int) {
			defer wg.Done()
			runPoller(stopCtx, client, id, &c)
		}(i)
	}

	wg.Wait()
	log.Printf("rwbench завершил работу: polls=%d commands=%d events=%d errors=%d",
		c.polls.Load(), c.commands.Load(), c.events.Load(), c.errors.Load())
}

func runWatcher(ctx context.Context, client service.InspectorClient, id int, c *counters) {
	stream, err := client.WatchEvents(ctx, &emptypb.Empty{})
	if err != nil {
		log.Printf("[client %d] watch error: %v", id, err)
		c.errors.Add(1)
		return
	}
	for {
		if _, err := stream.Recv(); err != nil {
			if ctx.Err() == nil {
				log.Printf("[client %d] recv error: %v", id, err)
				c.errors.Add(1)
			}
			return
		}
		c.events.Add(1)
	}
}

func runPoller(ctx context.Context, client service.InspectorClient, id int, c *counters) {
	randSrc := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := client.GetWorldState(ctx, &emptypb.Empty{}); err != nil {
				if ctx.Err() != nil {
					return
				}
				c.errors.Add(1)
				continue
			}
			c.polls.Add(1)

			// команда администратора с шансом 10%
			if randSrc.Intn(10) != 0 {
				continue
			}
			line := "stats"
			switch {
			case *spawn && randSrc.Intn(2) == 0:
				line = "spawn landstal"
			case randSrc.Intn(2) == 0:
				line = fmt.Sprintf("time %02d:%02d", randSrc.Intn(24), randSrc.Intn(60))
			}
			if _, err := client.RunCommand(ctx, wrapperspb.String(line)); err != nil {
				if ctx.Err() == nil {
					c.errors.Add(1)
				}
				continue
			}
			c.commands.Add(1)
		}
	}
}
