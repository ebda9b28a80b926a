package enhance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/ultraview/enhancer/internal/log"
	"github.com/ultraview/enhancer/internal/metrics"
	"github.com/ultraview/enhancer/internal/storage"
	"github.com/ultraview/enhancer/internal/transform"
)

// fallbackName is used when an upload carries no original file name.
const fallbackName = "file.bin"

// maxNameAttempts bounds how often the timestamp is bumped when two uploads
// of the same name land in the same millisecond.
const maxNameAttempts = 16

// DownloadPath is the route serving stored artifacts.
const DownloadPath = "/api/download"

// ErrNoFile is returned when an upload request carries no file.
var ErrNoFile = errors.New("no file received")

// Service stores uploads through a Transformer and serves them back.
type Service struct {
	store       storage.Storage
	transformer transform.Transformer
	ledger      Ledger
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTransformer replaces the default Identity transformer.
func WithTransformer(t transform.Transformer) Option {
	return func(s *Service) { s.transformer = t }
}

// WithLedger records every upload in l.
func WithLedger(l Ledger) Option {
	return func(s *Service) { s.ledger = l }
}

// WithClock overrides time.Now, used for storage names and TTL checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new Service backed by store.
func NewService(store storage.Storage, opts ...Option) *Service {
	s := &Service{
		store:       store,
		transformer: transform.Identity{},
		ledger:      nopLedger{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enhance runs src through the transformer and stores the result under
// "{epoch-ms}_{name}". Either one complete artifact is created or none.
func (s *Service) Enhance(ctx context.Context, originalName string, src io.Reader, settings transform.Settings) (*Artifact, error) {
	if src == nil {
		return nil, ErrNoFile
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	name := SanitizeName(originalName)
	createdAt := s.now()
	ts := createdAt.UnixMilli()

	p := newPipeline(func(w io.Writer) error {
		return s.transformer.Transform(ctx, w, src, settings)
	})
	defer p.close()

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		token := StorageName(ts+int64(attempt), name)
		n, err := s.store.Create(ctx, token, p, -1, "application/octet-stream")
		if errors.Is(err, storage.ErrExists) {
			if p.started() {
				// The source is partly consumed and cannot be replayed.
				return nil, fmt.Errorf("storage name %q was taken while writing", token)
			}
			log.Debugf("enhance: storage name %q taken, retrying", token)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("store %q: %w", token, err)
		}

		art := &Artifact{
			Token:        token,
			OriginalName: originalName,
			Size:         n,
			Transformer:  s.transformer.Name(),
			Settings:     &settings,
			CreatedAt:    createdAt,
		}
		metrics.UploadedBytes.Add(float64(n))
		if err := s.ledger.Record(ctx, art); err != nil {
			log.Warnf("enhance: ledger record %q: %v", token, err)
		}
		return art, nil
	}
	return nil, fmt.Errorf("no free storage name for %q after %d attempts", name, maxNameAttempts)
}

// Open returns the stored bytes for token.
func (s *Service) Open(ctx context.Context, token string) (io.ReadCloser, *storage.Object, error) {
	return s.store.Open(ctx, token)
}

// Describe returns what is known about the artifact under token. Storage
// decides existence; the ledger only adds detail.
func (s *Service) Describe(ctx context.Context, token string) (*Artifact, error) {
	obj, err := s.store.Stat(ctx, token)
	if err != nil {
		return nil, err
	}
	art := &Artifact{Token: obj.Key, Size: obj.Size, CreatedAt: obj.ModTime}

	rec, err := s.ledger.Get(ctx, token)
	switch {
	case err == nil:
		art.OriginalName = rec.OriginalName
		art.Transformer = rec.Transformer
		art.Settings = rec.Settings
		art.CreatedAt = rec.CreatedAt
	case !errors.Is(err, ErrNotRecorded):
		log.Warnf("enhance: ledger lookup %q: %v", token, err)
	}
	return art, nil
}

// Sweep deletes every artifact last modified more than ttl ago and returns
// how many were removed. A non-positive ttl keeps everything.
func (s *Service) Sweep(ctx context.Context, ttl time.Duration) (int, error) {
	if ttl <= 0 {
		return 0, nil
	}
	objects, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list artifacts: %w", err)
	}

	cutoff := s.now().Add(-ttl)
	removed := 0
	for _, obj := range objects {
		if !obj.ModTime.Before(cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, obj.Key); err != nil {
			log.Errorf("enhance: sweep %q: %v", obj.Key, err)
			continue
		}
		if err := s.ledger.MarkDeleted(ctx, obj.Key); err != nil {
			log.Warnf("enhance: ledger mark deleted %q: %v", obj.Key, err)
		}
		removed++
	}
	metrics.ArtifactsSwept.Add(float64(removed))
	return removed, nil
}

// RunSweeper calls Sweep every interval until ctx is done. It returns
// immediately when ttl or interval is not positive.
func (s *Service) RunSweeper(ctx context.Context, interval, ttl time.Duration) {
	if ttl <= 0 || interval <= 0 {
		log.Infof("enhance: artifact sweeper disabled")
		return
	}
	log.Infof("enhance: sweeping artifacts older than %s every %s", ttl, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Sweep(ctx, ttl)
			if err != nil {
				log.Errorf("enhance: sweep: %v", err)
				continue
			}
			if n > 0 {
				log.Infof("enhance: swept %d expired artifacts", n)
			}
		}
	}
}

// StorageName derives the storage name of an upload.
func StorageName(epochMillis int64, name string) string {
	return fmt.Sprintf("%d_%s", epochMillis, name)
}

// DownloadURL is the relative URL that serves token back.
func DownloadURL(token string) string {
	return DownloadPath + "?file=" + url.QueryEscape(token)
}

// SanitizeName reduces an uploaded file name to a base name that is safe as
// a flat storage key and inside a quoted Content-Disposition filename.
func SanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == ".." || name == "" {
		return fallbackName
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '"' {
			return '_'
		}
		return r
	}, name)
}

// pipeline connects a Transformer to a storage reader. The transform only
// starts on the first Read, so a Create that fails before reading (name
// taken) leaves the source untouched for the next attempt.
type pipeline struct {
	run  func(w io.Writer) error
	pr   *io.PipeReader
	done chan struct{}
}

func newPipeline(run func(w io.Writer) error) *pipeline {
	return &pipeline{run: run}
}

func (p *pipeline) Read(b []byte) (int, error) {
	if p.pr == nil {
		pr, pw := io.Pipe()
		p.pr = pr
		p.done = make(chan struct{})
		go func() {
			defer close(p.done)
			pw.CloseWithError(p.run(pw))
		}()
	}
	return p.pr.Read(b)
}

func (p *pipeline) started() bool {
	return p.pr != nil
}

// close stops an unfinished transform and waits for it to return.
func (p *pipeline) close() {
	if p.pr == nil {
		return
	}
	p.pr.CloseWithError(io.ErrClosedPipe)
	<-p.done
}
