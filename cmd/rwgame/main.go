package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/annelo/rwsim/internal/config"
	"github.com/annelo/rwsim/internal/data"
	"github.com/annelo/rwsim/internal/gameloop"
	"github.com/annelo/rwsim/internal/plugin"
	"github.com/annelo/rwsim/internal/script"
	"github.com/annelo/rwsim/internal/service"
	"github.com/annelo/rwsim/internal/state"
	"github.com/annelo/rwsim/internal/storage"
	"github.com/annelo/rwsim/internal/world"
)

var (
	configPath = flag.String("config", "", "Путь к YAML-файлу конфигурации")
	addr       = flag.String("addr", "", "Адрес gRPC сервера (перекрывает конфиг)")
	seed       = flag.Int64("seed", 0, "Сид для трафика и погоды (0 = из конфига или случайный)")
	headless   = flag.Bool("headless", false, "Запуск без терминального интерфейса, с консолью администратора")
	noStorage  = flag.Bool("no-storage", false, "Запуск без сохранений")
	loadSave   = flag.String("load", "", "Загрузить сохранение при старте")
	debugLog   = flag.String("debug-script", "", "Потоки скриптов через запятую, каждое возобновление которых пишется в лог")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка конфигурации: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.GRPC.Address = *addr
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *noStorage {
		cfg.Storage.Disabled = true
	}

	// Терминал занят интерфейсом, поэтому лог пишем в файл
	var outputs []string
	if !*headless && cfg.Log.File != "" {
		outputs = []string{cfg.Log.File}
	}
	logger, err := cfg.Logger(outputs...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка логгера: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	if err := run(cfg, sugar); err != nil {
		sugar.Errorw("Игра завершилась с ошибкой", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.SugaredLogger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Хранилище сохранений; без него игра продолжает работать
	var store storage.SaveStorage
	if !cfg.Storage.Disabled {
		bs, err := storage.NewBinaryStorage(cfg.Storage.Dir, cfg.Storage.WorldName, cfg.Seed)
		if err != nil {
			logger.Warnw("Продолжаем без хранилища", "dir", cfg.Storage.Dir, "error", err)
		} else {
			store = bs
			defer bs.Close()
			if cfg.Seed == 0 {
				cfg.Seed = bs.WorldInfo().Seed
			}
			logger.Infow("Хранилище сохранений инициализировано", "dir", cfg.Storage.Dir, "world", bs.WorldInfo().Name)
		}
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	// 1) Реестр: core-системы и команды, затем плагины
	reg := plugin.NewDefaultRegistry()
	for _, s := range gameloop.DefaultSystems(cfg.Seed) {
		if s.Name() == "traffic" && !cfg.Start.Traffic {
			continue
		}
		reg.RegisterGameSystem(s)
	}
	pm := plugin.NewPluginManager(cfg.Plugins.Dir, logger.Named("plugins"))
	admin := &service.Admin{
		Registry: reg,
		Plugins:  pm,
		Storage:  store,
		Config:   cfg,
		Logger:   logger,
		Stop:     cancel,
	}
	admin.Register(reg)
	reg.MarkCore()
	if err := pm.LoadPlugins(reg); err != nil {
		logger.Warnw("Ошибка при загрузке плагинов", "error", err)
	}

	// 2) Данные и мир
	catalog := data.DefaultCatalog()
	if cfg.Catalog != "" {
		c, err := data.LoadCatalog(cfg.Catalog)
		if err != nil {
			return err
		}
		catalog = c
	}
	catalog = plugin.BuildCatalog(catalog, reg)

	w := world.NewGameWorld(catalog, logger.Named("world"))
	if err := setupScene(w, cfg.Start, logger); err != nil {
		return err
	}
	if *loadSave != "" {
		if err := loadAtStart(ctx, store, w, *loadSave); err != nil {
			return err
		}
		reg.Fire(plugin.HookAfterLoad, *loadSave)
	}

	states := state.NewManager()
	states.Push(state.NewIngameState(w, states))

	machine := script.NewMachine(logger.Named("script"))
	if names := debugScripts(machine, *debugLog, logger.Named("script")); len(names) > 0 {
		logger.Infow("Отладка скриптов включена", "threads", names)
	}
	if cfg.Start.Intro && *loadSave == "" {
		if _, err := machine.StartThread("intro", script.IntroMission(w)); err != nil {
			return err
		}
	}

	loop, err := gameloop.NewLoop(w, states, cfg.Step, logger.Named("loop"), machine, reg.GameSystems()...)
	if err != nil {
		return err
	}
	loop.SetTimeScale(cfg.TimeScale)
	admin.Loop = loop

	// 3) gRPC сервер наблюдения
	inspector := service.NewInspectorService(loop, reg, logger.Named("inspector"))
	inspector.Start(ctx)
	var grpcServer *grpc.Server
	if !cfg.GRPC.Disabled {
		lis, err := net.Listen("tcp", cfg.GRPC.Address)
		if err != nil {
			return fmt.Errorf("listen %s: %w", cfg.GRPC.Address, err)
		}
		grpcServer = grpc.NewServer()
		inspector.RegisterServer(grpcServer)
		if cfg.GRPC.Reflection {
			// Включаем reflection для инструментов вроде grpcurl
			reflection.Register(grpcServer)
		}
		go func() {
			if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				logger.Errorw("Ошибка gRPC сервера", "error", err)
			}
		}()
		logger.Infow("gRPC сервер запущен", "addr", lis.Addr().String())
	}

	if store != nil && cfg.Storage.Autosave > 0 {
		go autosave(ctx, reg, cfg.Storage.Autosave, logger)
	}

	var frontend gameloop.Frontend
	if *headless {
		go repl(ctx, reg, cancel)
	} else {
		v, err := newViewer()
		if err != nil {
			return err
		}
		defer v.Close()
		frontend = v
	}

	logger.Infow("Игра запущена", "seed", cfg.Seed, "step", cfg.Step, "systems", len(loop.Systems()))
	runErr := loop.Run(ctx, frontend, cfg.FrameInterval)
	cancel()

	inspector.Stop()
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	pm.UnloadPlugins(reg)
	logger.Info("Игра остановлена")
	return runErr
}

func loadAtStart(ctx context.Context, store storage.SaveStorage, w *world.GameWorld, name string) error {
	if store == nil {
		return service.ErrNoStorage
	}
	save, err := store.LoadGame(ctx, name)
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	return w.Restore(save)
}

// autosave periodically runs the save command.
func autosave(ctx context.Context, reg plugin.PluginRegistry, every time.Duration, logger *zap.SugaredLogger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := service.RunCommandLine(reg, "save autosave"); err != nil {
				logger.Warnw("Автосохранение не удалось", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// repl читает команды администратора из stdin.
func repl(ctx context.Context, reg plugin.PluginRegistry, stop func()) {
	reader := bufio.NewReader(os.Stdin)
	for ctx.Err() == nil {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			stop()
			return
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		out, err := service.RunCommandLine(reg, input)
		switch {
		case errors.Is(err, service.ErrUnknownCommand):
			fmt.Printf("Неизвестная команда: %s\n", strings.Fields(input)[0])
		case err != nil:
			fmt.Printf("Error: %v\n", err)
		default:
			fmt.Println(strings.TrimRight(out, "\n"))
		}
	}
}
