package erp

import (
	"context"
	"strings"

	"salesrep_sync/internal/salesrep"
	"salesrep_sync/platform/apperr"
	"salesrep_sync/platform/config"
	"salesrep_sync/platform/logger"
)

// ChangeEvent is a customer record save as seen by the ERP hook.
type ChangeEvent struct {
	CustomerEmail string `json:"customerEmail"`
	OldValue      string `json:"oldValue"`
	NewValue      string `json:"newValue"`
}

// NotificationSource turns a change event into an assignment to forward.
// A nil assignment with a nil error means there is nothing to send.
type NotificationSource interface {
	OnChange(ctx context.Context, event ChangeEvent) (*salesrep.Assignment, error)
}

// TextSource forwards the rep's display text as the identifier.
type TextSource struct {
	log *logger.Logger
}

// NewTextSource creates a source that forwards rep names verbatim.
func NewTextSource(log *logger.Logger) *TextSource {
	if log == nil {
		log = logger.Discard()
	}
	return &TextSource{log: log}
}

// OnChange implements NotificationSource.
func (s *TextSource) OnChange(ctx context.Context, event ChangeEvent) (*salesrep.Assignment, error) {
	if unchanged(event) {
		s.log.WithContext(ctx).Debug("sales rep unchanged", "customer_email", event.CustomerEmail)
		return nil, nil
	}
	return &salesrep.Assignment{
		CustomerEmail: strings.TrimSpace(event.CustomerEmail),
		SalesRep:      strings.TrimSpace(event.NewValue),
	}, nil
}

// DirectoryChangeSource treats the new value as an employee id and forwards
// the employee's email.
type DirectoryChangeSource struct {
	directory DirectorySource
	filter    RepFilter
	log       *logger.Logger
}

// NewDirectoryChangeSource creates a source backed by directory.
func NewDirectoryChangeSource(directory DirectorySource, filter RepFilter, log *logger.Logger) *DirectoryChangeSource {
	if log == nil {
		log = logger.Discard()
	}
	return &DirectoryChangeSource{directory: directory, filter: filter, log: log}
}

// OnChange implements NotificationSource.
func (s *DirectoryChangeSource) OnChange(ctx context.Context, event ChangeEvent) (*salesrep.Assignment, error) {
	log := s.log.WithContext(ctx)
	if unchanged(event) {
		log.Debug("sales rep unchanged", "customer_email", event.CustomerEmail)
		return nil, nil
	}

	repID := strings.TrimSpace(event.NewValue)
	if repID == "" {
		log.Debug("sales rep cleared", "customer_email", event.CustomerEmail)
		return nil, nil
	}

	emp, err := s.directory.LookupRep(ctx, repID)
	if apperr.Is(err, apperr.KindNotFound) {
		log.Warn("sales rep not in directory", "rep_id", repID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(emp.Email) == "" {
		log.Debug("sales rep has no email", "rep_id", repID)
		return nil, nil
	}
	if ok, reason := s.filter.Allows(*emp); !ok {
		log.Info("sales rep filtered", "rep_id", repID, "rep_name", emp.DisplayName(), "reason", reason)
		return nil, nil
	}

	return &salesrep.Assignment{
		CustomerEmail: strings.TrimSpace(event.CustomerEmail),
		SalesRep:      strings.TrimSpace(emp.Email),
	}, nil
}

func unchanged(event ChangeEvent) bool {
	return strings.TrimSpace(event.OldValue) == strings.TrimSpace(event.NewValue)
}

// NewSource builds the source selected by ERP_SOURCE. The directory source
// needs a non-nil directory.
func NewSource(cfg config.ERPConfig, directory DirectorySource, log *logger.Logger) (NotificationSource, error) {
	switch cfg.GetERPSource() {
	case "", "text":
		return NewTextSource(log), nil
	case "directory":
		if directory == nil {
			return nil, apperr.Configuration("ERP_SOURCE=directory requires DATABASE_URL or ERP_DIRECTORY_FILE")
		}
		filter, err := NewRepFilter(cfg.GetRepFilterStrategy(), cfg.GetRepFilterValues())
		if err != nil {
			return nil, err
		}
		return NewDirectoryChangeSource(directory, filter, log), nil
	default:
		return nil, apperr.Configuration("unknown ERP_SOURCE " + cfg.GetERPSource())
	}
}
