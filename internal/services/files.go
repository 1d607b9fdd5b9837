package services

import (
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/docdrop-io/apiserver/internal/storage"
	"github.com/docdrop-io/apiserver/internal/store"
	"github.com/docdrop-io/apiserver/internal/token"
	"github.com/docdrop-io/apiserver/types"
	"github.com/google/uuid"
)

const downloadTokenTTL = 5 * time.Minute

var allowedExtensions = map[string]bool{
	".docx": true,
	".pptx": true,
	".xlsx": true,
}

// mime.TypeByExtension does not know the office formats on a bare system.
var officeContentTypes = map[string]string{
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// FileRepository defines persistence operations for file records.
type FileRepository interface {
	Get(ctx context.Context, id string) (types.FileRecord, error)
	List(ctx context.Context) ([]types.FileRecord, error)
	Create(ctx context.Context, record types.FileRecord) (types.FileRecord, error)
	Delete(ctx context.Context, id string) error
}

// FileService owns uploads, listing, and the scoped download flow.
type FileService struct {
	files   FileRepository
	users   UserRepository
	objects *storage.Storage
	tokens  *token.Service
	events  Events
}

func NewFileService(
	files FileRepository,
	users UserRepository,
	objects *storage.Storage,
	tokens *token.Service,
	events Events,
) *FileService {
	if events == nil {
		events = noopEvents{}
	}
	return &FileService{
		files:   files,
		users:   users,
		objects: objects,
		tokens:  tokens,
		events:  events,
	}
}

// Upload stores the document bytes under "{id}{ext}" and registers a
// file record. The extension gate applies to every caller; the ops-role
// gate is enforced upstream.
func (s *FileService) Upload(ctx context.Context, uploader types.User, filename string, r io.Reader, size int64) (types.FileRecord, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return types.FileRecord{}, ErrInvalidFileType
	}

	id := uuid.NewString()
	if err := s.objects.Put(ctx, id+ext, r, size, ContentTypeFor(filename)); err != nil {
		return types.FileRecord{}, err
	}

	record, err := s.files.Create(ctx, types.FileRecord{
		ID:       id,
		Filename: filename,
		Uploader: uploader.Email,
	})
	if err != nil {
		return types.FileRecord{}, err
	}

	s.events.FileUploaded(ctx, record)
	return record, nil
}

// List returns every registered file record.
func (s *FileService) List(ctx context.Context) ([]types.FileRecord, error) {
	return s.files.List(ctx)
}

// GrantDownload mints a five-minute token bound to exactly one file and
// returns the redemption path. The file is not checked for existence
// here; redemption reports NotFound if the record is gone by then.
func (s *FileService) GrantDownload(ctx context.Context, user types.User, fileID string) (string, error) {
	scoped, err := s.tokens.Issue(user.Email, types.RoleClient, fileID, downloadTokenTTL)
	if err != nil {
		return "", err
	}
	return "/download-file-secure/" + scoped, nil
}

// Redeem exchanges a scoped token for the file record and a reader over
// the stored bytes. The token's role must be client and its subject must
// still exist; the subject's verified flag is NOT re-checked here,
// unlike the listing path. Callers must close the reader.
func (s *FileService) Redeem(ctx context.Context, tokenString string) (types.FileRecord, io.ReadCloser, error) {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		return types.FileRecord{}, nil, ErrInvalidToken
	}
	if !strings.EqualFold(claims.Role, types.RoleClient) || claims.FileID == "" {
		return types.FileRecord{}, nil, ErrInvalidAccess
	}

	if _, err := s.users.GetByEmail(ctx, claims.Subject); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.FileRecord{}, nil, ErrInvalidAccess
		}
		return types.FileRecord{}, nil, err
	}

	record, err := s.files.Get(ctx, claims.FileID)
	if err != nil {
		return types.FileRecord{}, nil, err
	}

	ext := strings.ToLower(filepath.Ext(record.Filename))
	body, err := s.objects.Get(ctx, record.ID+ext)
	if err != nil {
		return types.FileRecord{}, nil, err
	}
	return record, body, nil
}

// ContentTypeFor infers the media type from the filename extension.
func ContentTypeFor(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if contentType, ok := officeContentTypes[ext]; ok {
		return contentType
	}
	if contentType := mime.TypeByExtension(ext); contentType != "" {
		return contentType
	}
	return "application/octet-stream"
}
