package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const (
	fieldProfileImage = "profileImage"
	fieldDocuments    = "documents"
)

// File is one file attached to an upload.
type File struct {
	Name    string
	Content io.Reader
}

// UploadAPI sends multipart/form-data uploads. It shares the response
// handling of Client.Request but builds its own headers.
type UploadAPI struct{ c *Client }

func (u *UploadAPI) ProfileImage(ctx context.Context, f File) (*Raw, error) {
	return u.upload(ctx, "profileImage", fieldProfileImage, []File{f})
}

func (u *UploadAPI) Documents(ctx context.Context, files []File) (*Raw, error) {
	return u.upload(ctx, "documents", fieldDocuments, files)
}

func (u *UploadAPI) upload(ctx context.Context, action, field string, files []File) (*Raw, error) {
	ep := lookup(groupUploads, action)
	path := ep.expand("", nil)

	body, contentType, err := encodeMultipart(field, files)
	if err != nil {
		return nil, u.c.fail(ep.Method, path, ep.Path, time.Now(), &RequestError{
			Kind: KindTransport, Method: ep.Method, Path: path, Err: err,
		})
	}

	header := http.Header{}
	header.Set(headerContentType, contentType)
	tok, err := u.c.bearer(ctx)
	if err != nil {
		return nil, u.c.fail(ep.Method, path, ep.Path, time.Now(), &RequestError{
			Kind: KindTransport, Method: ep.Method, Path: path, Err: err,
		})
	}
	if tok != "" {
		header.Set(headerAuthorization, "Bearer "+tok)
	}

	return u.c.send(ctx, ep.Method, path, ep.Path, header, body)
}

// encodeMultipart writes every file as a part named field. The part content
// type is sniffed from the file content.
func encodeMultipart(field string, files []File) (io.Reader, string, error) {
	if len(files) == 0 {
		return nil, "", fmt.Errorf("no files to upload")
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		data, err := io.ReadAll(f.Content)
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", f.Name, err)
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(field), escapeQuotes(filepath.Base(f.Name))))
		h.Set(headerContentType, mimetype.Detect(data).String())
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", f.Name, err)
		}
		if _, err := part.Write(data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }
