package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/annelo/rwsim/internal/service"
)

var (
	serverAddr = flag.String("server", "localhost:50051", "Адрес игры и порт")
	timeout    = flag.Duration("timeout", 5*time.Second, "Таймаут для одиночных запросов")
	raw        = flag.Bool("json", false, "Печатать ответы как JSON")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Использование: rwctl [флаги] <команда>

Команды:
  state               состояние мира
  timescale <x>       изменить скорость времени
  cmd <строка>        выполнить команду администратора
  watch               поток событий мира

Флаги:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	conn, err := grpc.NewClient(*serverAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Не удалось подключиться к %s: %v\n", *serverAddr, err)
		os.Exit(1)
	}
	defer conn.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, service.NewInspectorClient(conn), flag.Args(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client service.InspectorClient, args []string, out io.Writer) error {
	switch args[0] {
	case "state":
		ctx, cancel := context.WithTimeout(ctx, *timeout)
		defer cancel()
		st, err := client.GetWorldState(ctx, &emptypb.Empty{})
		if err != nil {
			return err
		}
		printState(out, st)
	case "timescale":
		if len(args) != 2 {
			return errors.New("usage: timescale <x>")
		}
		scale, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("bad scale %q: %w", args[1], err)
		}
		ctx, cancel := context.WithTimeout(ctx, *timeout)
		defer cancel()
		res, err := client.SetTimeScale(ctx, wrapperspb.Double(scale))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "time scale: %g\n", res.GetValue())
	case "cmd":
		if len(args) < 2 {
			return errors.New("usage: cmd <command> [args...]")
		}
		ctx, cancel := context.WithTimeout(ctx, *timeout)
		defer cancel()
		res, err := client.RunCommand(ctx, wrapperspb.String(strings.Join(args[1:], " ")))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, strings.TrimRight(res.GetValue(), "\n"))
	case "watch":
		return watch(ctx, client, out)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

// watch печатает события до отключения сервера или Ctrl-C
func watch(ctx context.Context, client service.InspectorClient, out io.Writer) error {
	stream, err := client.WatchEvents(ctx, &emptypb.Empty{})
	if err != nil {
		return err
	}
	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) || ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
		if *raw {
			fmt.Fprintln(out, protojson.Format(msg))
			continue
		}
		f := msg.GetFields()
		line := fmt.Sprintf("[%8.1f] %-16s %s", f["game_time"].GetNumberValue(), f["type"].GetStringValue(), f["message"].GetStringValue())
		if extra := f["fields"].GetStructValue(); extra != nil && len(extra.GetFields()) > 0 {
			line += " " + protojson.Format(extra)
		}
		fmt.Fprintln(out, line)
	}
}

func printState(out io.Writer, st *structpb.Struct) {
	if *raw {
		fmt.Fprintln(out, protojson.Format(st))
		return
	}
	f := st.GetFields()
	fmt.Fprintf(out, "%s  %s  mode=%s  x%g  steps=%.0f\n",
		f["clock"].GetStringValue(), f["weather"].GetStringValue(), f["state"].GetStringValue(),
		f["time_scale"].GetNumberValue(), f["steps"].GetNumberValue())
	fmt.Fprintf(out, "peds %.0f  cars %.0f  pickups %.0f  effects %.0f\n",
		f["pedestrians"].GetNumberValue(), f["vehicles"].GetNumberValue(),
		f["pickups"].GetNumberValue(), f["effects"].GetNumberValue())
	if p := f["player"].GetStructValue(); p != nil {
		pf := p.GetFields()
		var pos []string
		for _, v := range pf["position"].GetListValue().GetValues() {
			pos = append(pos, strconv.FormatFloat(v.GetNumberValue(), 'f', 1, 64))
		}
		fmt.Fprintf(out, "player (%s) activity=%s vehicle=%s\n",
			strings.Join(pos, ", "), pf["activity"].GetStringValue(), pf["vehicle"].GetStringValue())
	}
	for _, t := range f["texts"].GetListValue().GetValues() {
		fmt.Fprintf(out, "  %s\n", t.GetStringValue())
	}
}
