package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/nakamauwu/chatsync/dispatch"
	"github.com/nakamauwu/chatsync/errs"
	"github.com/nakamauwu/chatsync/id"
	"github.com/nakamauwu/chatsync/minio"
	"github.com/nakamauwu/chatsync/types"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxFileSize int64 = 5 << 20

	sniffLength         = 512
	parallelDownloads   = 4
	generatedNameLength = 10
)

// ObjectOpener streams objects addressed by s3:// URLs.
type ObjectOpener interface {
	Open(ctx context.Context, rawURL string) (io.ReadCloser, int64, error)
}

type AttachmentsConfig struct {
	Backend     AttachmentBackend
	Messages    *MessageStore
	Registry    *dispatch.Registry
	Objects     ObjectOpener
	MaxFileSize int64
	Logger      *slog.Logger
}

type Attachments struct {
	backend     AttachmentBackend
	messages    *MessageStore
	registry    *dispatch.Registry
	objects     ObjectOpener
	maxFileSize int64
	logger      *slog.Logger
}

func NewAttachments(cfg AttachmentsConfig) *Attachments {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	return &Attachments{
		backend:     cfg.Backend,
		messages:    cfg.Messages,
		registry:    cfg.Registry,
		objects:     cfg.Objects,
		maxFileSize: cfg.MaxFileSize,
		logger:      cfg.Logger,
	}
}

// UploadWithMessage sends content with files attached through the same
// optimistic flow as a text message. Every file is checked before anything
// is transferred. progress, when not nil, receives increasing percentages
// and reaches 100 once the message is confirmed.
func (a *Attachments) UploadWithMessage(ctx context.Context, conversationID, content string, files []types.Upload, progress func(percent int)) (types.Message, error) {
	if len(files) == 0 {
		return a.messages.SendMessage(ctx, conversationID, content)
	}

	files = slices.Clone(files)
	if err := a.inspect(ctx, files); err != nil {
		return types.Message{}, err
	}

	attachments := make([]types.Attachment, len(files))
	for i, f := range files {
		attachments[i] = types.Attachment{
			FileName: f.Name,
			FileType: f.ContentType,
			FileSize: f.Size,
		}
	}

	in := types.CreateMessage{
		ConversationID: conversationID,
		Content:        content,
		TempID:         id.GenerateTemp(),
	}
	report := a.reporter(conversationID, in.TempID, progress)

	return a.messages.send(ctx, in, attachments, func(ctx context.Context, in types.CreateMessage) (types.Message, error) {
		msg, err := a.backend.CreateMessageWithFiles(ctx, in, files, func(sent, total int64) {
			if total <= 0 {
				return
			}
			// 100 is kept for the confirmed message
			report(min(int(sent*100/total), 99))
		})
		if err == nil || errs.IsPartial(err) {
			report(100)
		}
		return msg, err
	})
}

func (a *Attachments) reporter(conversationID, tempID string, progress func(int)) func(int) {
	var (
		mu   sync.Mutex
		last = -1
	)
	return func(percent int) {
		mu.Lock()
		if percent <= last {
			mu.Unlock()
			return
		}
		last = percent
		mu.Unlock()

		if progress != nil {
			progress(percent)
		}
		if a.registry != nil {
			a.registry.Dispatch(dispatch.CategoryUploadProgress, types.UploadProgress{
				ConversationID: conversationID,
				TempID:         tempID,
				Percent:        percent,
			}, "")
		}
	}
}

// inspect fills in missing sizes, names and content types and enforces the
// size ceiling. Files are inspected concurrently since sniffing reads from
// each one.
func (a *Attachments) inspect(ctx context.Context, files []types.Upload) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return a.inspectFile(&files[i])
		})
	}
	return g.Wait()
}

type statter interface {
	Stat() (fs.FileInfo, error)
}

func (a *Attachments) inspectFile(f *types.Upload) error {
	if f.Reader() == nil {
		return errs.NewInvalidArgumentError("Files", fmt.Sprintf("%s has no content", f.Name))
	}

	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		f.Name = "file-" + gonanoid.Must(generatedNameLength)
	}

	if f.Size <= 0 {
		if st, ok := f.Reader().(statter); ok {
			if info, err := st.Stat(); err == nil {
				f.Size = info.Size()
			}
		}
	}
	if f.Size <= 0 {
		return errs.NewInvalidArgumentError("Files", fmt.Sprintf("%s is empty or of unknown size", f.Name))
	}
	if f.Size > a.maxFileSize {
		return errs.NewInvalidArgumentError("Files", fmt.Sprintf("%s is %s, the limit is %s",
			f.Name, humanize.IBytes(uint64(f.Size)), humanize.IBytes(uint64(a.maxFileSize))))
	}

	if f.ContentType == "" {
		f.ContentType = mime.TypeByExtension(filepath.Ext(f.Name))
	}
	if f.ContentType == "" {
		br := bufio.NewReaderSize(f.Reader(), sniffLength)
		head, err := br.Peek(sniffLength)
		if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
			return fmt.Errorf("sniff %s: %w", f.Name, err)
		}
		f.ContentType = http.DetectContentType(head)
		f.SetReader(br)
	}

	return nil
}

func (a *Attachments) open(ctx context.Context, fileURL string) (io.ReadCloser, int64, error) {
	if _, _, ok := minio.ParseURL(fileURL); ok {
		if a.objects == nil {
			return nil, 0, errs.NewInvalidArgumentError("FileURL", "object storage is not configured")
		}
		return a.objects.Open(ctx, fileURL)
	}
	return a.backend.Download(ctx, fileURL)
}

// Download streams the file at fileURL into dst.
func (a *Attachments) Download(ctx context.Context, fileURL string, dst io.Writer) (int64, error) {
	rc, size, err := a.open(ctx, fileURL)
	if err != nil {
		return 0, fmt.Errorf("download %s: %w", fileURL, err)
	}

	defer rc.Close()

	n, err := io.Copy(dst, rc)
	if err != nil {
		return n, fmt.Errorf("download %s: %w: %v", fileURL, errs.Network, err)
	}
	if size > 0 && n != size {
		return n, fmt.Errorf("download %s: %w: got %d of %d bytes", fileURL, errs.Network, n, size)
	}
	return n, nil
}

// DownloadToDir saves the file into dir and returns its path. A partial
// file is removed on failure.
func (a *Attachments) DownloadToDir(ctx context.Context, fileURL, fileName, dir string) (string, error) {
	p := filepath.Join(dir, saveName(fileName, fileURL))

	f, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", p, err)
	}

	_, err = a.Download(ctx, fileURL, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close %s: %w", p, closeErr)
	}
	if err != nil {
		_ = os.Remove(p)
		return "", err
	}

	return p, nil
}

// DownloadAll saves every attachment of msg into dir.
func (a *Attachments) DownloadAll(ctx context.Context, msg types.Message, dir string) ([]string, error) {
	paths := make([]string, len(msg.Attachments))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelDownloads)
	for i, att := range msg.Attachments {
		g.Go(func() error {
			p, err := a.DownloadToDir(ctx, att.FileURL, att.FileName, dir)
			if err != nil {
				return err
			}
			paths[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func saveName(fileName, fileURL string) string {
	valid := func(s string) bool {
		return s != "" && s != "." && s != ".." && s != "/" && s != string(filepath.Separator)
	}

	if name := filepath.Base(strings.TrimSpace(fileName)); valid(name) {
		return name
	}
	if u, err := url.Parse(fileURL); err == nil {
		if name := path.Base(u.Path); valid(name) {
			return name
		}
	}
	return "attachment-" + gonanoid.Must(generatedNameLength)
}
