package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jinhajunho/luel-note-sub000/internal/model"
	"github.com/jinhajunho/luel-note-sub000/internal/repository"
)

// PackageService handles granting prepaid packages and listing a member's
// ledger. The engine itself only ever charges and refunds existing packages.
type PackageService struct {
	stores repository.Stores
	logger *zap.Logger
}

func NewPackageService(stores repository.Stores, logger *zap.Logger) *PackageService {
	return &PackageService{stores: stores, logger: logger}
}

type GrantInput struct {
	MemberID      int64
	PaymentTypeID int64
	TotalLessons  int
	StartDate     time.Time
	EndDate       time.Time
}

// Grant creates a new package with all credits remaining.
func (s *PackageService) Grant(ctx context.Context, input GrantInput) (*model.Package, error) {
	if input.TotalLessons <= 0 {
		return nil, fmt.Errorf("total lessons must be positive")
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, fmt.Errorf("end date before start date")
	}

	pkg := &model.Package{
		MemberID:         input.MemberID,
		PaymentTypeID:    input.PaymentTypeID,
		TotalLessons:     input.TotalLessons,
		UsedLessons:      0,
		RemainingLessons: input.TotalLessons,
		Status:           model.DeriveStatus(input.TotalLessons),
		StartDate:        input.StartDate,
		EndDate:          input.EndDate,
	}

	if err := s.stores.Packages().Create(ctx, pkg); err != nil {
		return nil, err
	}

	s.logger.Info("Package granted",
		zap.Int64("package_id", pkg.ID),
		zap.Int64("member_id", pkg.MemberID),
		zap.Int("total_lessons", pkg.TotalLessons),
	)

	return pkg, nil
}

// ListByMember returns a member's packages, soonest-expiring first.
func (s *PackageService) ListByMember(ctx context.Context, memberID int64) ([]*model.Package, error) {
	return s.stores.Packages().ListByMember(ctx, memberID)
}
