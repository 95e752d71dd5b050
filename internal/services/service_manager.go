package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/skill-tracker/internal/repositories"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	// Watch the remote document and keep the engine snapshot current
	WatchChanges bool
}

func DefaultServiceManagerConfig() ServiceManagerConfig {
	return ServiceManagerConfig{WatchChanges: true}
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps   Dependencies
	remote repositories.DocumentStore
	logger *slog.Logger
	config ServiceManagerConfig

	hospitalService   HospitalService
	departmentService DepartmentService
	staffService      StaffService
	patientService    PatientService
	needsService      NeedsService
	backupService     BackupService
	authService       AuthService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

func NewServiceManager(deps Dependencies, remote repositories.DocumentStore, config ServiceManagerConfig) ServiceManager {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &serviceManager{
		deps:   deps,
		remote: remote,
		logger: logger,
		config: config,
	}
}

// Initialize sets up all services and starts watching the remote document
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if sm.deps.Engine == nil {
		return fmt.Errorf("failed to initialize services: sync engine is required")
	}

	sm.logger.Info("Initializing service manager")

	sm.hospitalService = NewHospitalService(sm.deps)
	sm.departmentService = NewDepartmentService(sm.deps)
	sm.staffService = NewStaffService(sm.deps)
	sm.patientService = NewPatientService(sm.deps)
	sm.needsService = NewNeedsService(sm.deps)
	sm.backupService = NewBackupService(sm.deps)
	sm.authService = NewAuthService(sm.deps)

	if sm.config.WatchChanges {
		if err := sm.deps.Engine.Watch(ctx); err != nil {
			// the engine still serves requests by fetching on demand
			sm.logger.Warn("Change watching unavailable", "error", err)
		}
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")
	return nil
}

func (sm *serviceManager) mustBeReady(name string) {
	if !sm.initialized {
		panic("service manager not initialized")
	}
	if sm.shutdown {
		panic(name + " service used after shutdown")
	}
}

// Service getters
func (sm *serviceManager) Hospital() HospitalService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("hospital")
	return sm.hospitalService
}

func (sm *serviceManager) Department() DepartmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("department")
	return sm.departmentService
}

func (sm *serviceManager) Staff() StaffService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("staff")
	return sm.staffService
}

func (sm *serviceManager) Patient() PatientService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("patient")
	return sm.patientService
}

func (sm *serviceManager) Needs() NeedsService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("needs")
	return sm.needsService
}

func (sm *serviceManager) Backup() BackupService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("backup")
	return sm.backupService
}

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("auth")
	return sm.authService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}
	if sm.remote == nil {
		return nil
	}
	if err := sm.remote.Ping(ctx); err != nil {
		return fmt.Errorf("remote store health check failed: %w", err)
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")
	if sm.deps.Engine != nil {
		sm.deps.Engine.StopWatching()
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")
	return nil
}
