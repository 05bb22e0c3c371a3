package service

import (
	"leaseline.app/leaseline/internal/engine"
	"leaseline.app/leaseline/internal/estimator"
	"leaseline.app/leaseline/internal/lease"
	"leaseline.app/leaseline/internal/lock"
	"leaseline.app/leaseline/internal/store"
)

type Services struct {
	stores    *store.Stores
	engine    *engine.Engine
	estimator estimator.Estimator
	locker    lock.TenantLocker
	leases    *lease.Generator
}

type ServicesConfig struct {
	Stores    *store.Stores
	Engine    *engine.Engine
	Estimator estimator.Estimator
	Locker    lock.TenantLocker
	Leases    *lease.Generator
}

func NewServices(cfg ServicesConfig) *Services {
	return &Services{
		stores:    cfg.Stores,
		engine:    cfg.Engine,
		estimator: cfg.Estimator,
		locker:    cfg.Locker,
		leases:    cfg.Leases,
	}
}

func (s *Services) Negotiations() NegotiationService {
	return NewNegotiationService(s.stores.Negotiations(), s.engine, s.estimator, s.locker)
}

func (s *Services) Leases() *lease.Generator {
	return s.leases
}
