package http

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync"

	"github.com/nakamauwu/chatsync/types"
)

const attachmentsField = "attachments"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// CreateMessageWithFiles streams a multipart message. progress receives the
// number of body bytes sent so far and the exact body length.
func (c *Client) CreateMessageWithFiles(ctx context.Context, in types.CreateMessage, files []types.Upload, progress func(sent, total int64)) (types.Message, error) {
	var out types.Message

	in.SetHasAttachments(len(files) != 0)
	if err := in.Validate(); err != nil {
		return out, err
	}

	boundary := multipart.NewWriter(io.Discard).Boundary()
	total, err := multipartLength(boundary, in, files)
	if err != nil {
		return out, fmt.Errorf("compute multipart length: %w", err)
	}

	pr, pw := io.Pipe()
	var wg sync.WaitGroup
	wg.Go(func() {
		pw.CloseWithError(writeMultipart(pw, boundary, in, files))
	})
	defer wg.Wait()
	defer pr.Close()

	body := &progressReader{r: pr, total: total, fn: progress}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("chats/"+url.PathEscape(in.ConversationID)+"/messages", nil), body)
	if err != nil {
		return out, fmt.Errorf("new request: %w", err)
	}

	req.ContentLength = total
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Idempotency-Key", IdempotencyKey(in))
	c.authorize(req)

	body.report()
	err = c.do(req, decodeMessage(&out, in.ConversationID))
	return out, err
}

func writeFields(mw *multipart.Writer, in types.CreateMessage) error {
	if err := mw.WriteField("content", in.Content); err != nil {
		return err
	}
	if in.TempID != "" {
		if err := mw.WriteField("tempId", in.TempID); err != nil {
			return err
		}
	}
	return nil
}

func createFilePart(mw *multipart.Writer, f types.Upload) (io.Writer, error) {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, attachmentsField, quoteEscaper.Replace(f.Name)))
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	return mw.CreatePart(h)
}

type countingWriter struct {
	n int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}

// multipartLength lays out the same multipart body without file contents
// to learn its exact size up front.
func multipartLength(boundary string, in types.CreateMessage, files []types.Upload) (int64, error) {
	var cw countingWriter
	mw := multipart.NewWriter(&cw)
	if err := mw.SetBoundary(boundary); err != nil {
		return 0, err
	}
	if err := writeFields(mw, in); err != nil {
		return 0, err
	}
	for _, f := range files {
		if _, err := createFilePart(mw, f); err != nil {
			return 0, err
		}
		cw.n += f.Size
	}
	if err := mw.Close(); err != nil {
		return 0, err
	}
	return cw.n, nil
}

func writeMultipart(w io.Writer, boundary string, in types.CreateMessage, files []types.Upload) error {
	mw := multipart.NewWriter(w)
	if err := mw.SetBoundary(boundary); err != nil {
		return err
	}
	if err := writeFields(mw, in); err != nil {
		return fmt.Errorf("write fields: %w", err)
	}
	for _, f := range files {
		part, err := createFilePart(mw, f)
		if err != nil {
			return fmt.Errorf("create part %s: %w", f.Name, err)
		}
		n, err := io.Copy(part, io.LimitReader(f.Reader(), f.Size))
		if err != nil {
			return fmt.Errorf("copy %s: %w", f.Name, err)
		}
		if n != f.Size {
			return fmt.Errorf("copy %s: read %d bytes, expected %d", f.Name, n, f.Size)
		}
	}
	return mw.Close()
}

type progressReader struct {
	r     io.Reader
	total int64
	sent  int64
	fn    func(sent, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.report()
	}
	return n, err
}

func (p *progressReader) report() {
	if p.fn != nil {
		p.fn(p.sent, p.total)
	}
}

// Download opens a streamed read of an attachment. fileURL may be absolute
// or relative to the API base. The caller closes the returned reader.
func (c *Client) Download(ctx context.Context, fileURL string) (io.ReadCloser, int64, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return nil, 0, fmt.Errorf("parse file url: %w", err)
	}
	if !u.IsAbs() {
		u = c.baseURL.ResolveReference(&url.URL{Path: strings.TrimPrefix(u.Path, "/"), RawQuery: u.RawQuery})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("new request: %w", err)
	}

	// only hand the credential to our own backend
	if u.Host == c.baseURL.Host {
		c.authorize(req)
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, 0, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, 0, c.statusErr(req, resp.StatusCode, body)
	}

	return resp.Body, resp.ContentLength, nil
}
