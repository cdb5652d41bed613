// Package service holds the providers of application dependencies.
package service

import (
	"github.com/neurolearn/shell/internal/domain/resource"
	"go.uber.org/zap"
)

// ResourceCreatorProvider provides resource.Creator.
type ResourceCreatorProvider interface {
	ResourceCreator() resource.Creator
}

// ResourceFinderProvider provides resource.Finder.
type ResourceFinderProvider interface {
	ResourceFinder() resource.Finder
}

// Locator is a service locator.
type Locator struct {
	ResourceCreatorProvider
	ResourceFinderProvider

	Logger *zap.Logger

	closers []func() error
}

// OnClose adds a shutdown hook.
func (l *Locator) OnClose(fn func() error) {
	l.closers = append(l.closers, fn)
}

// Close runs shutdown hooks in reverse order.
func (l *Locator) Close() error {
	var first error

	for i := len(l.closers) - 1; i >= 0; i-- {
		if err := l.closers[i](); err != nil && first == nil {
			first = err
		}
	}

	l.closers = nil

	return first
}
