package service

import (
	"context"
	"fmt"

	"github.com/dukerupert/homebase/internal/access"
	"github.com/dukerupert/homebase/internal/model"
)

const minPassphraseLen = 8

// exportKey names the object an export is uploaded to.
func exportKey(familyID string, ts int64) string {
	return fmt.Sprintf("families/%s/export-%d.json.enc", familyID, ts)
}

func (s *Service) ListExports(ctx context.Context, userID, familyID string) ([]model.FamilyExport, error) {
	if _, err := s.ownedFamily(ctx, userID, familyID); err != nil {
		return nil, err
	}
	exports, err := s.exports.ListByFamily(ctx, familyID)
	if err != nil {
		return nil, access.Internal("Failed to fetch exports", err)
	}
	return exports, nil
}

// CreateExport snapshots a family, encrypts it with passphrase and uploads
// it. The export row is recorded before the upload so a failed upload
// still leaves a failed entry behind.
func (s *Service) CreateExport(ctx context.Context, userID, familyID string, f access.Fields) (*model.FamilyExport, error) {
	if s.archiver == nil {
		return nil, access.Invalid("Export storage is not configured")
	}
	passphrase, err := f.RequiredText("passphrase", "Passphrase is required")
	if err != nil {
		return nil, err
	}
	if len(passphrase) < minPassphraseLen {
		return nil, access.Invalidf("Passphrase must be at least %d characters", minPassphraseLen)
	}

	family, err := s.ownedFamily(ctx, userID, familyID)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.families.Snapshot(ctx, *family)
	if err != nil {
		return nil, access.Internal("Failed to create export", err)
	}
	snapshot.ExportedAt = s.now()

	exp, err := s.exports.Create(ctx, familyID, exportKey(familyID, snapshot.ExportedAt.Unix()))
	if err != nil {
		return nil, access.Internal("Failed to create export", err)
	}

	size, archiveErr := s.archiver.Archive(ctx, exp.ObjectKey, snapshot, passphrase)
	if archiveErr != nil {
		s.logger.Error("archive family", "family_id", familyID, "export_id", exp.ID, "error", archiveErr)
		if err := s.exports.MarkFailed(ctx, exp.ID, archiveErr.Error()); err != nil {
			s.logger.Error("mark export failed", "export_id", exp.ID, "error", err)
		}
		return nil, access.Internal("Failed to upload export", archiveErr)
	}
	if err := s.exports.MarkUploaded(ctx, exp.ID, size); err != nil {
		return nil, access.Internal("Failed to create export", err)
	}

	out, err := s.exports.Get(ctx, familyID, exp.ID)
	if err != nil || out == nil {
		return nil, access.Internal("Failed to create export", err)
	}
	s.publish(userID, EntityExport, ActionCreated, out.ID)
	return out, nil
}
