// Package store keeps the client-side state of the learning resources
// catalogue and synchronizes it with the backend API.
//
// A Store is created once and shared by reference with every view that needs
// it. Views read snapshots with State and get notified of every committed
// change through Subscribe.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	resourcesPath = "/api/resources/"
	stateTopic    = "store:state:"
)

// Doer performs HTTP requests, *fasthttp.Client implements it.
type Doer interface {
	Do(req *fasthttp.Request, resp *fasthttp.Response) error
	DoDeadline(req *fasthttp.Request, resp *fasthttp.Response, deadline time.Time) error
}

// Option configures Store.
type Option func(s *Store)

// WithClient sets HTTP client, default is a zero fasthttp.Client.
func WithClient(c Doer) Option {
	return func(s *Store) {
		s.client = c
	}
}

// WithLogger sets logger for failure causes.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// Store holds resources, loading flag and error message.
//
// Mutations are serialized, operations are not: two operations running
// concurrently interleave their commits and the last commit wins.
type Store struct {
	resourcesURL string
	client       Doer
	logger       *zap.Logger
	bus          evbus.Bus

	mu        sync.Mutex
	state     State
	topics    []string
	lastTopic int
}

// New creates a Store for the API served at baseURL.
func New(baseURL string, options ...Option) *Store {
	s := &Store{
		resourcesURL: strings.TrimRight(baseURL, "/") + resourcesPath,
		bus:          evbus.New(),
		state:        State{Resources: []Resource{}},
	}

	for _, o := range options {
		o(s)
	}

	if s.client == nil {
		s.client = &fasthttp.Client{}
	}

	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	return s
}

// State returns a snapshot of current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.clone()
}

// Subscribe registers fn to receive a snapshot after every committed
// mutation. Calling the returned function stops notifications.
//
// Snapshots reach fn in commit order on a goroutine owned by the
// subscription, so fn may call the store, Subscribe or unsubscribe.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	sub := newSubscriber(fn)

	s.mu.Lock()
	s.lastTopic++
	topic := stateTopic + strconv.Itoa(s.lastTopic)
	s.mu.Unlock()

	if err := s.bus.Subscribe(topic, sub.push); err != nil {
		sub.close()
		s.logger.Error("failed to subscribe", zap.Error(err))

		return func() {}
	}

	s.mu.Lock()
	s.topics = append(s.topics, topic)
	s.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			s.mu.Lock()
			for i, t := range s.topics {
				if t == topic {
					s.topics = append(s.topics[:i], s.topics[i+1:]...)

					break
				}
			}
			s.mu.Unlock()

			sub.close()

			_ = s.bus.Unsubscribe(topic, sub.push)
		})
	}
}

// FetchResources replaces resources with the list served by the API.
//
// Failure leaves resources intact and sets the error message, the outcome
// is observed through State or Subscribe.
func (s *Store) FetchResources(ctx context.Context) {
	s.setLoading(true)
	s.setError(nil)

	defer s.setLoading(false)

	var resources []Resource

	if err := s.do(ctx, fasthttp.MethodGet, nil, &resources); err != nil {
		s.fail(FetchFailure, err)

		return
	}

	s.setResources(resources)
}

// CreateResource posts a new resource and appends the record returned by
// the API.
//
// Failure sets the error message and is returned as *Error.
func (s *Store) CreateResource(ctx context.Context, r Resource) (Resource, error) {
	s.setLoading(true)
	s.setError(nil)

	defer s.setLoading(false)

	var created Resource

	if err := s.do(ctx, fasthttp.MethodPost, r, &created); err != nil {
		return nil, s.fail(CreateFailure, err)
	}

	s.addResource(created)

	return created, nil
}

func (s *Store) fail(kind Kind, cause error) *Error {
	err := &Error{Kind: kind, Message: kind.Message(), Err: cause}
	msg := err.Message

	s.setError(&msg)
	s.logger.Error(kind.operation(), zap.Error(cause))

	return err
}

func (s *Store) do(ctx context.Context, method string, payload, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()

	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.SetRequestURI(s.resourcesURL)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	req.Header.Set(fasthttp.HeaderAcceptEncoding, "br, gzip")

	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}

		req.Header.SetContentType("application/json")
		req.SetBody(b)
	}

	var err error

	if deadline, ok := ctx.Deadline(); ok {
		err = s.client.DoDeadline(req, resp, deadline)
	} else {
		err = s.client.Do(req, resp)
	}

	if err != nil {
		return fmt.Errorf("%s %s: %w", method, s.resourcesURL, err)
	}

	if code := resp.StatusCode(); code < 200 || code > 299 {
		return &StatusError{Method: method, URL: s.resourcesURL, StatusCode: code}
	}

	body, err := decodeBody(resp)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// commit applies a mutation and publishes the snapshot.
//
// Publishing only queues snapshots, it happens under the lock so that
// subscribers observe commits in the order they were applied.
func (s *Store) commit(mutate func(st *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mutate(&s.state)
	snapshot := s.state.clone()

	for _, t := range s.topics {
		s.bus.Publish(t, snapshot)
	}
}

func (s *Store) setResources(resources []Resource) {
	s.commit(func(st *State) {
		st.Resources = resources
	})
}

func (s *Store) setLoading(loading bool) {
	s.commit(func(st *State) {
		st.Loading = loading
	})
}

func (s *Store) setError(msg *string) {
	s.commit(func(st *State) {
		st.Error = msg
	})
}

func (s *Store) addResource(r Resource) {
	s.commit(func(st *State) {
		st.Resources = append(st.Resources, r)
	})
}
