package agent

import (
	"sync"

	"github.com/convoflow/convoflow/channel"
	"github.com/convoflow/convoflow/commerce"
	"github.com/convoflow/convoflow/config"
	"github.com/convoflow/convoflow/dispatch"
	"github.com/convoflow/convoflow/engine"
	"github.com/convoflow/convoflow/flow"
	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/persistence/redis"
	"github.com/convoflow/convoflow/rest"
	"github.com/convoflow/convoflow/scheduler"
)

type Agent struct {
	Config       config.Config
	storage      *redis.Storage
	adapter      channel.Adapter
	commerce     commerce.Service
	flowService  *flow.Service
	engine       *engine.Engine
	dispatcher   *dispatch.Dispatcher
	scheduler    *scheduler.Scheduler
	reaper       *scheduler.Reaper
	httpServer   *rest.Server
	shutdown     bool
	shutdownLock sync.Mutex
	wg           sync.WaitGroup
}

func New(conf config.Config) (*Agent, error) {
	a := &Agent{
		Config: conf,
	}
	setup := []func() error{
		a.setupStorage,
		a.setupChannel,
		a.setupCommerce,
		a.setupFlowService,
		a.setupEngine,
		a.setupDispatcher,
		a.setupScheduler,
		a.setupHttpServer,
	}
	for _, fn := range setup {
		if err := fn(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Agent) setupStorage() error {
	a.storage = redis.NewStorage(redis.Config{
		Addrs:     a.Config.RedisConfig.Addrs,
		Namespace: a.Config.RedisConfig.Namespace,
	})
	return nil
}

func (a *Agent) setupChannel() error {
	a.adapter = channel.NewWhatsAppAdapter(a.Config.WhatsApp, a.storage.Messages)
	return nil
}

func (a *Agent) setupCommerce() error {
	a.commerce = commerce.NewService(a.Config.Commerce, a.storage.Products, a.storage.Carts, a.storage.Orders, a.adapter)
	return nil
}

func (a *Agent) setupFlowService() error {
	a.flowService = flow.NewService(a.storage.Flows)
	return nil
}

func (a *Agent) setupEngine() error {
	a.engine = engine.New(a.Config.Engine, a.storage.Runs, a.flowService, a.storage.Tenants, a.adapter, a.commerce)
	return nil
}

func (a *Agent) setupDispatcher() error {
	a.dispatcher = dispatch.NewDispatcher(a.engine, a.flowService, a.storage.Runs, a.storage.Tenants, a.storage.Contacts, a.storage.Messages, a.Config.DispatchCapacity, &a.wg)
	return nil
}

func (a *Agent) setupScheduler() error {
	a.scheduler = scheduler.NewScheduler(a.engine, a.flowService, a.storage.Tenants, a.storage.Contacts, a.Config.SchedulerTickSec, &a.wg)
	a.reaper = scheduler.NewReaper(a.storage.Runs, a.Config.ReaperTickSec, &a.wg)
	return nil
}

func (a *Agent) setupHttpServer() error {
	var err error
	a.httpServer, err = rest.NewServer(a.Config, a.engine, a.flowService, a.storage.Runs, a.storage.Tenants, a.storage.Contacts, a.storage.Products, a.dispatcher)
	return err
}

func (a *Agent) Start() error {
	a.dispatcher.Start()
	a.scheduler.Start()
	a.reaper.Start()
	go func() {
		if err := a.httpServer.Start(); err != nil {
			_ = a.Shutdown()
			panic(err)
		}
	}()
	return nil
}

func (a *Agent) Shutdown() error {
	logger.Info("shutting down server")
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()
	if a.shutdown {
		return nil
	}
	a.shutdown = true

	shutdown := []func() error{
		a.httpServer.Stop,
		func() error {
			a.dispatcher.Stop()
			a.scheduler.Stop()
			a.reaper.Stop()
			return nil
		},
	}
	for _, fn := range shutdown {
		if err := fn(); err != nil {
			return err
		}
	}
	logger.Info("waiting for all services to shutdown...")
	a.wg.Wait()
	return nil
}
