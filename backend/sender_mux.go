package backend

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// providerName is what goes to webhook.backend config, i.e: discord, noop
var providerName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

type SenderMultiplexer struct {
	lock   sync.RWMutex
	sender map[string]Sender
}

var _ SenderMux = (*SenderMultiplexer)(nil)

// defaultMux is filled by Register and read by MuxBackend.
var defaultMux = NewSenderMux()

func NewSenderMux() *SenderMultiplexer {
	return &SenderMultiplexer{
		sender: map[string]Sender{},
	}
}

func MuxBackend() SenderMux {
	return defaultMux
}

func MustRegister(provider string, sender Sender) {
	if err := Register(provider, sender); err != nil {
		panic(err)
	}
}

// Register adds sender into the default mux.
func Register(provider string, sender Sender) error {
	return defaultMux.Register(provider, sender)
}

func (s *SenderMultiplexer) Register(provider string, sender Sender) error {
	provider = strings.TrimSpace(provider)
	if !providerName.MatchString(provider) {
		return fmt.Errorf("invalid provider name '%s': only lower case letter, digit, dash and underscore allowed", provider)
	}

	if sender == nil {
		return fmt.Errorf("cannot assign nil sender to provider '%s'", provider)
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if _, exist := s.sender[provider]; exist {
		return fmt.Errorf("%w '%s'", ErrProviderAlreadyRegistered, provider)
	}

	s.sender[provider] = sender
	return nil
}

func (s *SenderMultiplexer) Lookup(provider string) (sender Sender, err error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	sender, exist := s.sender[strings.TrimSpace(provider)]
	if !exist {
		err = fmt.Errorf("%w: '%s'", ErrProviderNotRegistered, provider)
		return
	}

	return
}

func (s *SenderMultiplexer) ListProviders(_ context.Context) []string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	providers := make([]string, 0, len(s.sender))
	for provider := range s.sender {
		providers = append(providers, provider)
	}

	sort.Strings(providers)
	return providers
}
