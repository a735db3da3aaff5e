package salesrep

import (
	"context"
	"strings"

	"salesrep_sync/internal/events"
	"salesrep_sync/internal/storefront"
	"salesrep_sync/platform/apperr"
	"salesrep_sync/platform/config"
	"salesrep_sync/platform/logger"
	"salesrep_sync/platform/metrics"
)

const (
	metafieldTypeReference = "metaobject_reference"
	defaultNamespace       = "suavecito"
	defaultKey             = "sales_rep"
)

// State is a step of one update.
type State string

const (
	StateReceived              State = "received"
	StateCustomerLookup        State = "customer_lookup"
	StateRepListFetch          State = "rep_list_fetch"
	StateRepResolution         State = "rep_resolution"
	StateTagRemoval            State = "tag_removal"
	StateMetafieldAndTagUpdate State = "metafield_and_tag_update"
	StateSucceeded             State = "succeeded"
	StateFailed                State = "failed"
)

// Assignment is one inbound change notification.
type Assignment struct {
	CustomerEmail string `json:"customerEmail"`
	SalesRep      string `json:"salesRep"`
}

// Gateway is the storefront surface the update needs.
type Gateway interface {
	CustomerByEmail(ctx context.Context, email string) (*storefront.Customer, error)
	SalesReps(ctx context.Context) ([]storefront.SalesRep, error)
	RemoveTags(ctx context.Context, customerID string, tags []string) error
	AssignSalesRep(ctx context.Context, customerID string, metafield storefront.MetafieldInput, tags []string) (*storefront.AssignResult, error)
}

// UpdateResult describes how far one update got.
type UpdateResult struct {
	State    State                    `json:"state"`
	FailedAt State                    `json:"failedAt,omitempty"`
	Customer *storefront.Customer     `json:"customer,omitempty"`
	Rep      *storefront.SalesRep     `json:"rep,omitempty"`
	Delta    *TagDelta                `json:"delta,omitempty"`
	Payload  *storefront.AssignResult `json:"payload,omitempty"`
}

// Succeeded reports whether the update completed.
func (r *UpdateResult) Succeeded() bool {
	return r != nil && r.State == StateSucceeded
}

// Options configures the update.
type Options struct {
	Strategy      MatchStrategy
	DefaultHandle string
	Namespace     string
	Key           string
	// Bus receives an event for every finished update. Optional.
	Bus           events.Bus
}

// OptionsFromConfig builds Options from the sync configuration.
func OptionsFromConfig(cfg config.SyncConfig) (Options, error) {
	strategy, err := ParseMatchStrategy(cfg.GetMatchStrategy())
	if err != nil {
		return Options{}, err
	}
	return Options{
		Strategy:      strategy,
		DefaultHandle: cfg.GetDefaultRepHandle(),
		Namespace:     cfg.GetMetafieldNamespace(),
		Key:           cfg.GetMetafieldKey(),
	}, nil
}

// Service runs sales rep updates against the storefront.
type Service struct {
	gateway   Gateway
	resolver  Resolver
	namespace string
	key       string
	bus       events.Bus
	log       *logger.Logger
}

// NewService creates the update service.
func NewService(gateway Gateway, opts Options, log *logger.Logger) *Service {
	if opts.Strategy == "" {
		opts.Strategy = MatchEmail
	}
	if opts.Namespace == "" {
		opts.Namespace = defaultNamespace
	}
	if opts.Key == "" {
		opts.Key = defaultKey
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		gateway:   gateway,
		resolver:  NewResolver(opts.Strategy, opts.DefaultHandle),
		namespace: opts.Namespace,
		key:       opts.Key,
		bus:       opts.Bus,
		log:       log,
	}
}

// UpdateSalesRep assigns the rep identified by repIdentifier to the customer
// with customerEmail. Steps run strictly in order and the first failure ends
// the update; nothing is retried or rolled back. If the final mutation fails
// after stale tags were removed, the customer is left without a rep tag.
func (s *Service) UpdateSalesRep(ctx context.Context, customerEmail, repIdentifier string) (*UpdateResult, error) {
	result := &UpdateResult{State: StateReceived}
	err := s.run(ctx, result, strings.TrimSpace(customerEmail), repIdentifier)

	kind := "none"
	if err != nil {
		result.FailedAt = result.State
		result.State = StateFailed
		kind = apperr.GetKind(err).String()
		metrics.SyncOutcomes.WithLabelValues("failed", string(result.FailedAt), kind).Inc()
		s.log.WithContext(ctx).SyncOutcome(customerEmail, repIdentifier, string(result.FailedAt), err)
		s.publish(ctx, events.SalesRepSyncFailed{
			BaseEvent:     events.NewBaseEvent(ctx),
			CustomerEmail: customerEmail,
			Identifier:    repIdentifier,
			FailedAt:      string(result.FailedAt),
			Kind:          kind,
			Message:       err.Error(),
		})
		return result, err
	}

	result.State = StateSucceeded
	metrics.SyncOutcomes.WithLabelValues("succeeded", string(StateSucceeded), kind).Inc()
	s.log.WithContext(ctx).SyncOutcome(customerEmail, repIdentifier, string(StateSucceeded), nil)
	s.publish(ctx, events.SalesRepAssigned{
		BaseEvent:     events.NewBaseEvent(ctx),
		CustomerID:    result.Customer.ID,
		CustomerEmail: result.Customer.Email,
		Identifier:    repIdentifier,
		RepID:         result.Rep.ID,
		RepHandle:     result.Rep.Handle,
		Fallback:      !s.resolver.Matches(repIdentifier, *result.Rep),
		RemovedTags:   result.Delta.ToRemove,
		AddedTags:     result.Delta.ToAdd,
	})
	return result, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus != nil {
		s.bus.Publish(ctx, event)
	}
}

func (s *Service) run(ctx context.Context, result *UpdateResult, customerEmail, repIdentifier string) error {
	if customerEmail == "" {
		return apperr.Validation("No customer email provided").WithOp("update sales rep")
	}

	result.State = StateCustomerLookup
	customer, err := s.gateway.CustomerByEmail(ctx, customerEmail)
	if err != nil {
		return err
	}
	if customer == nil {
		return apperr.NotFound("customer not found").
			WithOp("update sales rep").
			WithDetails(map[string]string{"customerEmail": customerEmail})
	}
	result.Customer = customer

	result.State = StateRepListFetch
	reps, err := s.gateway.SalesReps(ctx)
	if err != nil {
		return err
	}

	result.State = StateRepResolution
	rep, err := s.resolver.Resolve(repIdentifier, reps)
	if err != nil {
		return err
	}
	result.Rep = &rep

	delta := ComputeDelta(customer.Tags, rep)
	result.Delta = &delta

	if len(delta.ToRemove) > 0 {
		result.State = StateTagRemoval
		if err := s.gateway.RemoveTags(ctx, customer.ID, delta.ToRemove); err != nil {
			return err
		}
	}

	result.State = StateMetafieldAndTagUpdate
	payload, err := s.gateway.AssignSalesRep(ctx, customer.ID, storefront.MetafieldInput{
		Namespace: s.namespace,
		Key:       s.key,
		Type:      metafieldTypeReference,
		Value:     rep.ID,
	}, delta.ToAdd)
	if err != nil {
		return err
	}
	result.Payload = payload
	return nil
}

// Preview resolves identifier against the current rep list without writing anything.
func (s *Service) Preview(ctx context.Context, identifier string) (storefront.SalesRep, error) {
	reps, err := s.gateway.SalesReps(ctx)
	if err != nil {
		return storefront.SalesRep{}, err
	}
	return s.resolver.Resolve(identifier, reps)
}

// SalesReps returns the current rep list.
func (s *Service) SalesReps(ctx context.Context) ([]storefront.SalesRep, error) {
	return s.gateway.SalesReps(ctx)
}

// Strategy returns the configured match strategy.
func (s *Service) Strategy() MatchStrategy {
	return s.resolver.Strategy
}
