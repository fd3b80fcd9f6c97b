package service

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/orgcms-api/internal/models"
	appErrors "github.com/noah-isme/orgcms-api/pkg/errors"
)

type structureStore interface {
	documentFinder
	FindByID(ctx context.Context, collection, id string, depth int) (models.Document, error)
}

// StructureService assembles the position and member hierarchy of a period.
type StructureService struct {
	store  structureStore
	logger *zap.Logger
}

// NewStructureService creates the structure assembler.
func NewStructureService(store structureStore, logger *zap.Logger) *StructureService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StructureService{store: store, logger: logger}
}

// Assemble builds the hierarchy for periodID. Every position appears once in ascending order,
// vacant positions included, each with its active members in retrieval order. An unknown period
// yields a nil period and an empty hierarchy.
func (s *StructureService) Assemble(ctx context.Context, periodID string) (*models.Structure, error) {
	var (
		period    *models.Period
		positions []models.Position
		members   []models.Member
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		doc, err := s.store.FindByID(gctx, models.CollectionPeriods, periodID, 0)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}
		var p models.Period
		if err := decodeDocument(doc, &p); err != nil {
			return err
		}
		period = &p
		return nil
	})
	g.Go(func() error {
		res, err := s.store.Find(gctx, models.CollectionPositions, models.FindOptions{
			Where: models.Eq("period", periodID),
			Sort:  "order",
			Limit: models.NoLimit,
		})
		if err != nil {
			return err
		}
		positions, err = decodeDocuments[models.Position](res.Docs)
		return err
	})
	g.Go(func() error {
		res, err := s.store.Find(gctx, models.CollectionMembers, models.FindOptions{
			Where: models.And(models.Eq("period", periodID), models.Eq("isActive", true)),
			Limit: models.NoLimit,
			Depth: 1,
		})
		if err != nil {
			return err
		}
		members, err = decodeDocuments[models.Member](res.Docs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeFailure(s.logger, "assemble structure", err)
	}

	return &models.Structure{Period: period, Hierarchy: buildHierarchy(positions, members)}, nil
}

func buildHierarchy(positions []models.Position, members []models.Member) []models.StructureEntry {
	sort.SliceStable(positions, func(i, j int) bool {
		return positions[i].Order < positions[j].Order
	})

	byPosition := make(map[string][]models.Member, len(positions))
	for _, m := range members {
		id := m.Position.ID()
		byPosition[id] = append(byPosition[id], m)
	}

	seen := make(map[string]struct{}, len(positions))
	hierarchy := make([]models.StructureEntry, 0, len(positions))
	for _, p := range positions {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}

		holders := byPosition[p.ID]
		if holders == nil {
			holders = []models.Member{}
		}
		hierarchy = append(hierarchy, models.StructureEntry{Position: p, Members: holders})
	}
	return hierarchy
}

// MemberBySlug looks up a member profile with its position and period embedded.
func (s *StructureService) MemberBySlug(ctx context.Context, slug string) (*models.Member, error) {
	res, err := s.store.Find(ctx, models.CollectionMembers, models.FindOptions{
		Where: models.Eq("slug", slug),
		Limit: 1,
		Depth: 2,
	})
	if err != nil {
		return nil, storeFailure(s.logger, "find member", err)
	}
	if len(res.Docs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
	}
	var member models.Member
	if err := decodeDocument(res.Docs[0], &member); err != nil {
		return nil, storeFailure(s.logger, "decode member", err)
	}
	return &member, nil
}
