package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"neodrive/internal/domain/file"
)

// Status is an upload item's lifecycle state. pending and uploading are the
// live states; the other three are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
	StatusCancelled Status = "cancelled"
)

var (
	ErrNoSession       = errors.New("not logged in")
	ErrQuotaExceeded   = errors.New("files exceed the remaining storage quota")
	ErrCancelled       = errors.New("upload cancelled")
	ErrTransferTimeout = errors.New("upload transfer timed out")
	ErrBatchActive     = errors.New("uploads still in progress; wait or cancel them first")
)

// LocalFile describes a file to upload. Open is called once per attempt.
type LocalFile struct {
	Name     string
	Size     int64
	MimeType string
	Open     func() (io.ReadCloser, error)
}

// Item is a snapshot of one upload's state.
type Item struct {
	ID       string
	Name     string
	Size     int64
	Progress int
	Status   Status
	Err      error
}

type item struct {
	Item
	cancel context.CancelCauseFunc
}

// Uploader runs upload batches against the server: per file, a credential
// request, a direct-to-storage PUT and a metadata confirmation. Items are
// independent; one failure never stops the rest.
type Uploader struct {
	client          *Client
	transferTimeout time.Duration

	mu    sync.Mutex
	items map[string]*item
	usage *file.UsageSnapshot
}

func NewUploader(client *Client, transferTimeout time.Duration) *Uploader {
	return &Uploader{
		client:          client,
		transferTimeout: transferTimeout,
		items:           make(map[string]*item),
	}
}

// StartBatch uploads every file under the given path and blocks until all
// items are terminal, then refreshes the cached usage. The aggregate size is
// pre-checked against the last known remaining quota before any network
// call; only the first batch fetches a snapshot. The server still decides
// per file.
func (u *Uploader) StartBatch(ctx context.Context, path string, files []LocalFile) ([]string, error) {
	identity := u.client.Identity()
	if identity == nil {
		return nil, ErrNoSession
	}

	var total int64
	for _, f := range files {
		total += f.Size
	}

	u.mu.Lock()
	cached := u.usage
	u.mu.Unlock()
	if cached == nil {
		if err := u.refreshUsage(ctx); err != nil {
			return nil, fmt.Errorf("refresh storage usage: %w", err)
		}
		u.mu.Lock()
		cached = u.usage
		u.mu.Unlock()
	}
	if total > cached.RemainingStorage {
		return nil, ErrQuotaExceeded
	}

	u.mu.Lock()
	ids := make([]string, 0, len(files))
	started := make([]*item, 0, len(files))
	for _, f := range files {
		it := &item{Item: Item{
			ID:     uuid.New().String(),
			Name:   f.Name,
			Size:   f.Size,
			Status: StatusPending,
		}}
		u.items[it.ID] = it
		ids = append(ids, it.ID)
		started = append(started, it)
	}
	u.mu.Unlock()

	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		go func(it *item, f LocalFile) {
			defer wg.Done()
			u.uploadOne(ctx, identity.ID, path, it, f)
		}(started[i], f)
	}
	wg.Wait()

	if err := u.refreshUsage(ctx); err != nil {
		return ids, fmt.Errorf("refresh storage usage: %w", err)
	}
	return ids, nil
}

func (u *Uploader) uploadOne(ctx context.Context, userID, path string, it *item, f LocalFile) {
	itemCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	u.mu.Lock()
	it.cancel = cancel
	it.Status = StatusUploading
	u.mu.Unlock()

	err := u.transfer(itemCtx, userID, path, it, f)

	u.mu.Lock()
	defer u.mu.Unlock()
	it.cancel = nil
	switch {
	case err == nil:
		it.Status = StatusCompleted
		it.Progress = 100
	case errors.Is(context.Cause(itemCtx), ErrCancelled):
		it.Status = StatusCancelled
		it.Err = ErrCancelled
	default:
		it.Status = StatusError
		it.Err = err
	}
}

func (u *Uploader) transfer(ctx context.Context, userID, path string, it *item, f LocalFile) error {
	credential, err := u.client.PresignUpload(ctx, file.PresignRequest{
		UserID:   userID,
		Name:     f.Name,
		Size:     f.Size,
		MimeType: f.MimeType,
		Path:     path,
	})
	if err != nil {
		return err
	}

	body, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer body.Close()

	// The timeout bounds only the byte transfer; a cancelled or expired
	// credential is left to lapse on its own.
	putCtx := ctx
	if u.transferTimeout > 0 {
		var cancel context.CancelFunc
		putCtx, cancel = context.WithTimeoutCause(ctx, u.transferTimeout, ErrTransferTimeout)
		defer cancel()
	}

	reader := &progressReader{r: newContextReader(putCtx, body), total: f.Size, update: func(pct int) {
		u.mu.Lock()
		if pct > it.Progress {
			it.Progress = pct
		}
		u.mu.Unlock()
	}}

	if err := u.client.Put(putCtx, credential.PresignedURL, reader, f.Size, f.MimeType); err != nil {
		if cause := context.Cause(putCtx); cause != nil && !errors.Is(cause, context.Canceled) {
			return fmt.Errorf("%w: %s", cause, f.Name)
		}
		return err
	}

	mimeType := f.MimeType
	_, err = u.client.ConfirmUpload(ctx, file.MetadataRequest{
		UserID:     userID,
		StorageKey: &credential.UniqueKey,
		Name:       f.Name,
		Type:       string(file.TypeFile),
		Size:       f.Size,
		MimeType:   &mimeType,
		Path:       path,
	})
	return err
}

// Cancel aborts one in-flight item. Terminal items are a no-op.
func (u *Uploader) Cancel(id string) {
	u.mu.Lock()
	it, ok := u.items[id]
	var cancel context.CancelCauseFunc
	if ok && it.cancel != nil {
		cancel = it.cancel
	}
	u.mu.Unlock()

	if cancel != nil {
		cancel(ErrCancelled)
	}
}

// DismissBatch clears terminal items. It refuses while any item is still
// pending or uploading.
func (u *Uploader) DismissBatch() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	for _, it := range u.items {
		if it.Status == StatusPending || it.Status == StatusUploading {
			return ErrBatchActive
		}
	}
	u.items = make(map[string]*item)
	return nil
}

// Items returns a snapshot of every tracked item.
func (u *Uploader) Items() []Item {
	u.mu.Lock()
	defer u.mu.Unlock()

	items := make([]Item, 0, len(u.items))
	for _, it := range u.items {
		items = append(items, it.Item)
	}
	return items
}

// Item returns the snapshot of one item by id.
func (u *Uploader) Item(id string) (Item, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	it, ok := u.items[id]
	if !ok {
		return Item{}, false
	}
	return it.Item, true
}

func (u *Uploader) refreshUsage(ctx context.Context) error {
	usage, err := u.client.StorageUsage(ctx)
	if err != nil {
		return err
	}
	u.mu.Lock()
	u.usage = usage
	u.mu.Unlock()
	return nil
}

// contextReader pumps the source on its own goroutine so the transport's
// write loop never blocks inside a Read past cancellation. Without it a
// stalled body read wedges http.Client.Do and neither cancel nor the
// transfer timeout can abort the PUT.
type contextReader struct {
	ctx    context.Context
	chunks chan readChunk
	rem    []byte
	err    error
}

type readChunk struct {
	data []byte
	err  error
}

func newContextReader(ctx context.Context, r io.Reader) *contextReader {
	cr := &contextReader{ctx: ctx, chunks: make(chan readChunk)}
	go func() {
		defer close(cr.chunks)
		for {
			buf := make([]byte, 32*1024)
			n, err := r.Read(buf)
			select {
			case cr.chunks <- readChunk{data: buf[:n], err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return cr
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if len(cr.rem) == 0 && cr.err != nil {
		return 0, cr.err
	}
	if len(cr.rem) == 0 {
		select {
		case c, ok := <-cr.chunks:
			if !ok {
				if cause := context.Cause(cr.ctx); cause != nil {
					return 0, cause
				}
				return 0, io.EOF
			}
			cr.rem = c.data
			cr.err = c.err
		case <-cr.ctx.Done():
			return 0, context.Cause(cr.ctx)
		}
	}
	if len(cr.rem) == 0 && cr.err != nil {
		return 0, cr.err
	}
	n := copy(p, cr.rem)
	cr.rem = cr.rem[n:]
	return n, nil
}

// progressReader reports monotonic 0-100 progress as the transfer consumes
// bytes.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	update func(pct int)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.read += int64(n)
	if p.total > 0 {
		pct := int(p.read * 100 / p.total)
		if pct > 100 {
			pct = 100
		}
		p.update(pct)
	}
	return n, err
}
