package picker

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	pdfQuery        = "mimeType='application/pdf' and trashed=false"
	listFields      = "files(id,name,mimeType,modifiedTime)"
	defaultPageSize = 50
)

// ErrUnauthorized is returned when Drive rejects the access token.
var ErrUnauthorized = errors.New("google drive rejected the access token")

type driveLister struct {
	service  *drive.Service
	pageSize int64
}

// NewDriveFactory returns a factory for a Drive backed Lister restricted to PDF files.
func NewDriveFactory(pageSize int64, opts ...option.ClientOption) ServiceFactory {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return func(ctx context.Context, ts oauth2.TokenSource) (Lister, error) {
		clientOpts := append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)

		service, err := drive.NewService(ctx, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("create drive service: %w", err)
		}

		return &driveLister{service: service, pageSize: pageSize}, nil
	}
}

func (d *driveLister) List(ctx context.Context) ([]Document, error) {
	list, err := d.service.Files.List().
		Q(pdfQuery).
		OrderBy("modifiedTime desc").
		PageSize(d.pageSize).
		Fields(listFields).
		Context(ctx).
		Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}
		return nil, err
	}

	docs := make([]Document, 0, len(list.Files))
	for _, f := range list.Files {
		if f == nil || f.Id == "" {
			continue
		}
		docs = append(docs, Document{
			ID:           f.Id,
			Name:         f.Name,
			MimeType:     f.MimeType,
			ModifiedTime: f.ModifiedTime,
		})
	}

	return docs, nil
}
