package emotion

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/carecam/internal/ai"
	"github.com/kozaktomas/carecam/internal/constants"
)

var (
	errNoFace        = errors.New("no face in model result")
	errEmptyDominant = errors.New("model returned an empty dominant emotion")
)

// ModelLoader constructs the model backend. It runs at most once successfully.
type ModelLoader func(ctx context.Context) (ai.Model, error)

// Classifier assigns an emotion label to frames. Construction is cheap: the
// model is only loaded by the first classification that needs it.
type Classifier struct {
	enabled bool
	loader  ModelLoader
	catalog *Catalog
	timeout time.Duration
	log     logrus.FieldLogger

	mu    sync.Mutex
	model ai.Model
}

type Option func(*Classifier)

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) Option {
	return func(c *Classifier) { c.timeout = d }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Classifier) { c.log = log }
}

func NewClassifier(enabled bool, loader ModelLoader, catalog *Catalog, opts ...Option) *Classifier {
	c := &Classifier{
		enabled: enabled,
		loader:  loader,
		catalog: catalog,
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Classifier) Enabled() bool { return c.enabled }

// Loaded reports whether the model has been loaded.
func (c *Classifier) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model != nil
}

// ModelName returns the loaded model name, or "" before the first load.
func (c *Classifier) ModelName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.model == nil {
		return ""
	}
	return c.model.Name()
}

// Usage returns the token usage of the loaded model. ok is false before the
// first load and for backends that are not billed per token.
func (c *Classifier) Usage() (usage ai.Usage, ok bool) {
	c.mu.Lock()
	model := c.model
	c.mu.Unlock()

	reporter, ok := model.(ai.UsageReporter)
	if !ok {
		return ai.Usage{}, false
	}
	return reporter.GetUsage(), true
}

// EnsureModelLoaded loads the model if it is not loaded yet. A failed load is
// not cached, so the next call tries again.
func (c *Classifier) EnsureModelLoaded(ctx context.Context) (ai.Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.model != nil {
		return c.model, nil
	}
	if c.loader == nil {
		return nil, errors.New("no model loader configured")
	}

	start := time.Now()
	model, err := c.loader(ctx)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if model == nil {
		return nil, errors.New("load model: loader returned no model")
	}
	c.model = model
	c.log.WithFields(logrus.Fields{
		"model":    model.Name(),
		"duration": time.Since(start).String(),
	}).Info("emotion model loaded")
	return model, nil
}

// Classify returns the dominant emotion of the first face in img. It never
// returns an error: failures are reported as a Failed label.
func (c *Classifier) Classify(ctx context.Context, img image.Image) Label {
	if !c.enabled {
		return Disabled()
	}
	data, err := ai.EncodeImage(img, constants.MaxModelImageSize)
	if err != nil {
		return c.fail(fmt.Errorf("encode frame: %w", err))
	}
	return c.classify(ctx, data)
}

func (c *Classifier) classify(ctx context.Context, data []byte) Label {
	model, err := c.EnsureModelLoaded(ctx)
	if err != nil {
		return c.fail(err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	faces, err := model.AnalyzeEmotion(ctx, data)
	if err != nil {
		return c.fail(fmt.Errorf("%s: %w", model.Name(), err))
	}
	if len(faces) == 0 {
		return c.fail(errNoFace)
	}

	// Several faces: the first one wins.
	dominant := c.catalog.Normalize(faces[0].Dominant)
	if dominant == "" {
		return c.fail(errEmptyDominant)
	}
	return Classified(dominant)
}

func (c *Classifier) fail(err error) Label {
	c.log.WithError(err).Warn("emotion classification failed")
	return Failed(err)
}
