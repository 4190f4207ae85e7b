package docstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AladdinMagdy/whispr-sub000/models"
)

// MemStore keeps everything in process memory, for tests and local dev.
// A single mutex guards all maps: reputation updates and report aggregates
// are read-modify-write cycles, and lost updates are a correctness bug.
type MemStore struct {
	lk           sync.Mutex
	reputations  map[string]*models.UserReputation
	violations   map[string][]*models.ViolationRecord
	reports      map[uint64]*models.Report
	resolutions  map[uint64]*models.ReportResolution
	nextViolID   uint64
	nextReportID uint64
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		reputations: make(map[string]*models.UserReputation),
		violations:  make(map[string][]*models.ViolationRecord),
		reports:     make(map[uint64]*models.Report),
		resolutions: make(map[uint64]*models.ReportResolution),
	}
}

func (s *MemStore) LoadUserReputation(ctx context.Context, userID string) (*models.UserReputation, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	rep, ok := s.reputations[userID]
	if !ok {
		return nil, fmt.Errorf("loading reputation for %s: %w", userID, ErrNotFound)
	}
	out := *rep
	out.ViolationHistory = s.violationHistoryLocked(userID)
	return &out, nil
}

func (s *MemStore) SaveUserReputation(ctx context.Context, rep *models.UserReputation) error {
	s.lk.Lock()
	defer s.lk.Unlock()
	cp := *rep
	cp.ViolationHistory = nil
	s.reputations[rep.UserID] = &cp
	return nil
}

func (s *MemStore) AppendViolationRecord(ctx context.Context, rec *models.ViolationRecord) error {
	s.lk.Lock()
	defer s.lk.Unlock()
	s.nextViolID++
	cp := *rec
	cp.ID = s.nextViolID
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.violations[rec.UserID] = append(s.violations[rec.UserID], &cp)
	rec.ID = cp.ID
	return nil
}

func (s *MemStore) violationHistoryLocked(userID string) []models.ViolationRecord {
	var out []models.ViolationRecord
	for _, rec := range s.violations[userID] {
		out = append(out, *rec)
	}
	return out
}

func (s *MemStore) LoadReport(ctx context.Context, id uint64) (*models.Report, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, fmt.Errorf("loading report %d: %w", id, ErrNotFound)
	}
	cp := *r
	if res, ok := s.resolutions[id]; ok {
		rcp := *res
		cp.Resolution = &rcp
	}
	return &cp, nil
}

func (s *MemStore) LoadReportsByContent(ctx context.Context, subjectType, subjectID string) ([]*models.Report, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	var out []*models.Report
	for _, r := range s.reports {
		if r.SubjectType == subjectType && r.SubjectID == subjectID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemStore) LoadReportsByReporter(ctx context.Context, reporterID string) ([]*models.Report, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	var out []*models.Report
	for _, r := range s.reports {
		if r.ReporterID == reporterID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemStore) SaveReport(ctx context.Context, report *models.Report) error {
	s.lk.Lock()
	defer s.lk.Unlock()
	if report.ID == 0 {
		s.nextReportID++
		report.ID = s.nextReportID
	}
	cp := *report
	s.reports[report.ID] = &cp
	return nil
}

func (s *MemStore) UpdateReport(ctx context.Context, id uint64, fields map[string]any) error {
	s.lk.Lock()
	defer s.lk.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return fmt.Errorf("updating report %d: %w", id, ErrNotFound)
	}
	for k, v := range fields {
		switch k {
		case "status":
			r.Status = v.(models.ReportStatus)
		case "priority":
			r.Priority = v.(models.ReportPriority)
		case "reason":
			r.Reason = v.(string)
		case "updated_at":
			r.UpdatedAt = v.(time.Time)
		case "reviewed_at":
			t := v.(time.Time)
			r.ReviewedAt = &t
		case "reviewed_by":
			by := v.(string)
			r.ReviewedBy = &by
		default:
			return fmt.Errorf("updating report %d: unsupported field %q", id, k)
		}
	}
	return nil
}

func (s *MemStore) SaveReportResolution(ctx context.Context, res *models.ReportResolution) error {
	s.lk.Lock()
	defer s.lk.Unlock()
	cp := *res
	s.resolutions[res.ReportID] = &cp
	if r, ok := s.reports[res.ReportID]; ok {
		rcp := cp
		r.Resolution = &rcp
	}
	return nil
}

func (s *MemStore) CountActiveBannedUsers(ctx context.Context) (int64, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	var n int64
	for _, rep := range s.reputations {
		if rep.Level == models.LevelBanned {
			n++
		}
	}
	return n, nil
}
