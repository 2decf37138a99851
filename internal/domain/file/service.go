package file

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"neodrive/internal/domain/quota"
	"neodrive/internal/domain/session"
)

// ObjectStore is the narrow view of object storage the registry needs.
type ObjectStore interface {
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	Copy(ctx context.Context, srcKey, dstKey string) error
	Delete(ctx context.Context, key string) error
	ObjectURL(key string) string
}

// Service is the source of truth for file metadata: CRUD, ownership
// enforcement, quota-gated write credentials and the derived usage view.
type Service struct {
	repo          Repository
	objects       ObjectStore
	quota         *quota.Evaluator
	presignExpiry time.Duration
}

func NewService(repo Repository, objects ObjectStore, evaluator *quota.Evaluator, presignExpiry time.Duration) *Service {
	return &Service{
		repo:          repo,
		objects:       objects,
		quota:         evaluator,
		presignExpiry: presignExpiry,
	}
}

// List returns every record owned by the caller, with a public URL derived
// for stored files. The client builds folder, category and favorites views
// from this single listing.
func (s *Service) List(ctx context.Context, sess session.Session) ([]RecordView, error) {
	records, err := s.repo.ListByUser(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	views := make([]RecordView, 0, len(records))
	for _, rec := range records {
		view := RecordView{FileRecord: *rec}
		if rec.Type == TypeFile && rec.StorageKey != nil {
			u := s.objects.ObjectURL(*rec.StorageKey)
			view.URL = &u
		}
		views = append(views, view)
	}
	return views, nil
}

// StorageUsage recomputes the caller's quota snapshot from record
// aggregation.
func (s *Service) StorageUsage(ctx context.Context, sess session.Session) (*UsageSnapshot, error) {
	used, err := s.quota.UsedStorage(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	limit := quota.LimitsFor(sess.Subscription).MaxTotalStorage

	return &UsageSnapshot{
		UsedStorage:      used,
		StorageLimit:     limit,
		RemainingStorage: limit - used,
		UsagePercentage:  int(math.Round(float64(used) / float64(limit) * 100)),
		Subscription:     string(sess.Subscription),
	}, nil
}

// PresignUpload checks the prospective write against the caller's tier and,
// if allowed, issues a 30-minute single-object write credential. The quota
// read is a snapshot: concurrent uploads may each pass individually.
func (s *Service) PresignUpload(ctx context.Context, sess session.Session, req PresignRequest) (*PresignResult, error) {
	if session.Authorize(&sess, req.UserID) != session.DecisionAuthorized {
		return nil, ErrNotOwner
	}

	used, err := s.quota.UsedStorage(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.quota.Check(sess.Subscription, req.Size, req.MimeType, used); err != nil {
		return nil, err
	}

	key := sess.UserID + req.Path + req.Name
	url, err := s.objects.PresignPut(ctx, key, req.MimeType, s.presignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	return &PresignResult{PresignedURL: url, UniqueKey: key}, nil
}

// ConfirmUpload persists the metadata record after the client finished its
// direct-to-storage write. Folder creation is the degenerate case with no
// storage object. Quota is re-checked here: the credential check and this
// one bracket the transfer, with no reservation in between.
func (s *Service) ConfirmUpload(ctx context.Context, sess session.Session, req MetadataRequest) (*FileRecord, error) {
	if session.Authorize(&sess, req.UserID) != session.DecisionAuthorized {
		return nil, ErrNotOwner
	}

	recordType := RecordType(req.Type)
	if recordType == TypeFile {
		if req.StorageKey == nil || *req.StorageKey == "" {
			return nil, fmt.Errorf("%w: file metadata missing storage key", ErrRecordInvalid)
		}
		used, err := s.quota.UsedStorage(ctx, sess.UserID)
		if err != nil {
			return nil, err
		}
		mimeType := ""
		if req.MimeType != nil {
			mimeType = *req.MimeType
		}
		if err := s.quota.Check(sess.Subscription, req.Size, mimeType, used); err != nil {
			return nil, err
		}
	}

	exists, err := s.repo.ExistsAtPath(ctx, sess.UserID, req.Path, req.Name)
	if err != nil {
		return nil, fmt.Errorf("check name conflict: %w", err)
	}
	if exists {
		return nil, ErrNameConflict
	}

	rec := &FileRecord{
		ID:          uuid.New().String(),
		UserID:      sess.UserID,
		Name:        req.Name,
		Type:        recordType,
		Path:        req.Path,
		IsFavorited: req.IsFavorited,
		MimeType:    req.MimeType,
		Size:        req.Size,
		StorageKey:  req.StorageKey,
		Category:    CategoryFor(req.MimeType, recordType),
	}
	if recordType == TypeFolder {
		rec.Size = 0
		rec.StorageKey = nil
		rec.MimeType = nil
		rec.Category = nil
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create file record: %w", err)
	}
	return rec, nil
}

// Rename updates a record's name. For files with a stored object, the object
// is copied to a key reflecting the new name before the record changes and
// the old key is removed last, so the record never points at a missing
// object: a copy failure leaves everything untouched, a late delete failure
// only leaks the old object.
func (s *Service) Rename(ctx context.Context, sess session.Session, req RenameRequest) error {
	if session.Authorize(&sess, req.UserID) != session.DecisionAuthorized {
		return ErrNotOwner
	}

	rec, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}
	if rec.UserID != sess.UserID {
		return ErrNotOwner
	}

	oldKey := ""
	if rec.Type == TypeFile && rec.StorageKey != nil {
		oldKey = *rec.StorageKey
		newKey := fmt.Sprintf("%s_%s%s%s", rec.UserID, uuid.New().String(), rec.Path, req.Name)

		if err := s.objects.Copy(ctx, oldKey, newKey); err != nil {
			return fmt.Errorf("move storage object: %w", err)
		}
		rec.StorageKey = &newKey
	}

	rec.Name = req.Name
	if err := s.repo.Update(ctx, rec); err != nil {
		// The copy may have leaked a new object; the record still points at
		// the old key, which exists.
		return fmt.Errorf("update file record: %w", err)
	}

	if oldKey != "" {
		if err := s.objects.Delete(ctx, oldKey); err != nil {
			log.Printf("rename %s: old object %q left behind: %v", rec.ID, oldKey, err)
		}
	}
	return nil
}

// ToggleFavorite flips the flag. Each call is reported independently even
// though two calls return to the original state.
func (s *Service) ToggleFavorite(ctx context.Context, sess session.Session, req FavoriteRequest) (bool, error) {
	if session.Authorize(&sess, req.UserID) != session.DecisionAuthorized {
		return false, ErrNotOwner
	}

	rec, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return false, err
	}
	if rec.UserID != sess.UserID {
		return false, ErrNotOwner
	}

	rec.IsFavorited = !rec.IsFavorited
	if err := s.repo.Update(ctx, rec); err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	log.Printf("file %s favorited=%t by user %s", rec.ID, rec.IsFavorited, sess.UserID)
	return rec.IsFavorited, nil
}

// Delete removes a record. Folders must be empty; files lose their storage
// object first, so a storage failure never leaves a metadata row pointing
// at a deleted object.
func (s *Service) Delete(ctx context.Context, sess session.Session, req DeleteRequest) error {
	if session.Authorize(&sess, req.UserID) != session.DecisionAuthorized {
		return ErrNotOwner
	}

	rec, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}
	if rec.UserID != sess.UserID {
		return ErrNotOwner
	}

	if rec.Type == TypeFolder {
		children, err := s.repo.CountChildren(ctx, sess.UserID, rec.ChildPath())
		if err != nil {
			return fmt.Errorf("check folder contents: %w", err)
		}
		if children > 0 {
			return ErrFolderNotEmpty
		}
	}

	if rec.Type == TypeFile && rec.StorageKey != nil {
		if err := s.objects.Delete(ctx, *rec.StorageKey); err != nil {
			return fmt.Errorf("delete storage object: %w", err)
		}
	}

	if err := s.repo.Delete(ctx, rec.ID); err != nil {
		return fmt.Errorf("delete file record: %w", err)
	}
	return nil
}
