package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hadi-makki/gymleb-api/internal/models"
	"github.com/hadi-makki/gymleb-api/internal/repository"
	"github.com/hadi-makki/gymleb-api/internal/schedule"
)

type sessionLister interface {
	List(ctx context.Context, filter repository.SessionFilter) ([]models.Session, error)
}

type purchaseLister interface {
	ListByIDs(ctx context.Context, purchaseIDs []int64) (map[int64]models.SubscriptionPurchase, error)
}

type trainerNamer interface {
	NamesByIDs(ctx context.Context, trainerIDs []int64) (map[int64]string, error)
}

type memberNamer interface {
	NamesByIDs(ctx context.Context, memberIDs []int64) (map[int64]string, error)
}

// CalendarService is the read side of the scheduler: sorted listings,
// grouped calendar views, client-group aggregation, and export rows.
// Everything here is read-only and safe under unlimited concurrency.
type CalendarService struct {
	sessionRepo  sessionLister
	purchaseRepo purchaseLister
	trainerRepo  trainerNamer
	memberRepo   memberNamer
	now          func() time.Time
}

func NewCalendarService(
	sessionRepo sessionLister,
	purchaseRepo purchaseLister,
	trainerRepo trainerNamer,
	memberRepo memberNamer,
) *CalendarService {
	return &CalendarService{
		sessionRepo:  sessionRepo,
		purchaseRepo: purchaseRepo,
		trainerRepo:  trainerRepo,
		memberRepo:   memberRepo,
		now:          time.Now,
	}
}

type CalendarBucket struct {
	Label    string                 `json:"label"`
	Sessions []models.SessionDetail `json:"sessions"`
}

type ExportRow struct {
	Date         string `json:"date"`
	Time         string `json:"time"`
	Trainer      string `json:"trainer"`
	Members      string `json:"members"`
	Subscription string `json:"subscription"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

// ListSessions returns sessions matching the filter in calendar order,
// each decorated with its status and a display instant in the zone.
func (s *CalendarService) ListSessions(
	ctx context.Context,
	filter repository.SessionFilter,
	timezone string,
) ([]models.SessionDetail, error) {
	zone, err := schedule.LoadZone(timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, timezone)
	}

	sessions, purchases, err := s.loadWithPurchases(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.toSortedDetails(sessions, purchases, zone), nil
}

// CalendarView buckets the listing either by local start time or by
// trainer name. groupBy accepts "time" and "trainer".
func (s *CalendarService) CalendarView(
	ctx context.Context,
	filter repository.SessionFilter,
	groupBy string,
	timezone string,
) ([]CalendarBucket, error) {
	zone, err := schedule.LoadZone(timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, timezone)
	}

	sessions, purchases, err := s.loadWithPurchases(ctx, filter)
	if err != nil {
		return nil, err
	}

	entries := make([]schedule.Entry, 0, len(sessions))
	byID := make(map[int64]models.Session, len(sessions))
	for _, session := range sessions {
		entries = append(entries, toEntry(session, purchases))
		byID[session.ID] = session
	}
	schedule.SortEntries(entries, zone)

	var buckets []schedule.Bucket
	switch strings.TrimSpace(groupBy) {
	case "", "time":
		buckets = schedule.GroupByTimeOfDay(entries, zone)
	case "trainer":
		names, err := s.trainerRepo.NamesByIDs(ctx, trainerIDs(sessions))
		if err != nil {
			return nil, err
		}
		buckets = schedule.GroupByTrainer(entries, func(id int64) string { return names[id] })
	default:
		return nil, fmt.Errorf("%w: group_by must be time or trainer", ErrInvalidInput)
	}

	now := s.now()
	view := make([]CalendarBucket, 0, len(buckets))
	for _, bucket := range buckets {
		details := make([]models.SessionDetail, 0, len(bucket.Entries))
		for _, entry := range bucket.Entries {
			details = append(details, s.toDetail(byID[entry.ID], purchases, zone, now))
		}
		view = append(view, CalendarBucket{Label: bucket.Label, Sessions: details})
	}
	return view, nil
}

// ClientGroups clusters a trainer's sessions by exact participating
// member set with per-status counts and summed revenue.
func (s *CalendarService) ClientGroups(
	ctx context.Context,
	trainerID int64,
	timezone string,
) ([]schedule.ClientGroup, error) {
	zone, err := schedule.LoadZone(timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, timezone)
	}

	sessions, purchases, err := s.loadWithPurchases(ctx, repository.SessionFilter{
		TrainerID:        &trainerID,
		IncludeCancelled: true,
	})
	if err != nil {
		return nil, err
	}

	entries := make([]schedule.Entry, 0, len(sessions))
	for _, session := range sessions {
		entries = append(entries, toEntry(session, purchases))
	}
	return schedule.ClientGroups(entries, s.now(), zone), nil
}

// ExportRows flattens the listing into spreadsheet rows.
func (s *CalendarService) ExportRows(
	ctx context.Context,
	filter repository.SessionFilter,
	timezone string,
) ([]ExportRow, error) {
	zone, err := schedule.LoadZone(timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, timezone)
	}

	sessions, purchases, err := s.loadWithPurchases(ctx, filter)
	if err != nil {
		return nil, err
	}

	trainerNames, err := s.trainerRepo.NamesByIDs(ctx, trainerIDs(sessions))
	if err != nil {
		return nil, err
	}
	memberNames, err := s.memberRepo.NamesByIDs(ctx, memberIDs(sessions))
	if err != nil {
		return nil, err
	}

	entries := make([]schedule.Entry, 0, len(sessions))
	byID := make(map[int64]models.Session, len(sessions))
	for _, session := range sessions {
		entries = append(entries, toEntry(session, purchases))
		byID[session.ID] = session
	}
	schedule.SortEntries(entries, zone)

	now := s.now()
	rows := make([]ExportRow, 0, len(entries))
	for _, entry := range entries {
		session := byID[entry.ID]

		row := ExportRow{
			Trainer:   trainerNames[session.TrainerID],
			Members:   joinNames(session.MemberIDs, memberNames),
			Status:    string(schedule.Classify(entry, now, zone)),
			CreatedAt: zone.Format(session.CreatedAt),
		}
		if session.SessionDate != nil {
			local := session.SessionDate.In(zone.Location())
			row.Date = local.Format("2006-01-02")
			row.Time = local.Format("15:04")
		}
		if session.PurchaseID != nil {
			if purchase, ok := purchases[*session.PurchaseID]; ok {
				row.Subscription = fmt.Sprintf("Package #%d (%d sessions)", purchase.ID, purchase.SessionCount)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *CalendarService) loadWithPurchases(
	ctx context.Context,
	filter repository.SessionFilter,
) ([]models.Session, map[int64]models.SubscriptionPurchase, error) {
	sessions, err := s.sessionRepo.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]int64, 0)
	seen := make(map[int64]struct{})
	for _, session := range sessions {
		if session.PurchaseID == nil {
			continue
		}
		if _, ok := seen[*session.PurchaseID]; ok {
			continue
		}
		seen[*session.PurchaseID] = struct{}{}
		ids = append(ids, *session.PurchaseID)
	}

	purchases, err := s.purchaseRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return sessions, purchases, nil
}

func (s *CalendarService) toSortedDetails(
	sessions []models.Session,
	purchases map[int64]models.SubscriptionPurchase,
	zone schedule.Zone,
) []models.SessionDetail {
	entries := make([]schedule.Entry, 0, len(sessions))
	byID := make(map[int64]models.Session, len(sessions))
	for _, session := range sessions {
		entries = append(entries, toEntry(session, purchases))
		byID[session.ID] = session
	}
	schedule.SortEntries(entries, zone)

	now := s.now()
	details := make([]models.SessionDetail, 0, len(entries))
	for _, entry := range entries {
		details = append(details, s.toDetail(byID[entry.ID], purchases, zone, now))
	}
	return details
}

func (s *CalendarService) toDetail(
	session models.Session,
	purchases map[int64]models.SubscriptionPurchase,
	zone schedule.Zone,
	now time.Time,
) models.SessionDetail {
	detail := models.SessionDetail{
		Session: session,
		Status:  string(schedule.Classify(toEntry(session, purchases), now, zone)),
	}
	if session.SessionDate != nil {
		rendered := zone.Format(*session.SessionDate)
		detail.DisplayDate = &rendered
	}
	if session.PurchaseID != nil {
		if purchase, ok := purchases[*session.PurchaseID]; ok {
			detail.Purchase = &purchase
		}
	}
	return detail
}

// toEntry projects a stored session into the scheduler's tagged view.
func toEntry(session models.Session, purchases map[int64]models.SubscriptionPurchase) schedule.Entry {
	timing := schedule.Unscheduled(nil)
	if session.SessionDate != nil {
		timing = schedule.ScheduledAt(*session.SessionDate)
	} else if session.PurchaseID != nil {
		if purchase, ok := purchases[*session.PurchaseID]; ok {
			timing = schedule.Unscheduled(&schedule.PurchaseWindow{
				Start: purchase.StartsAt,
				End:   purchase.EndsAt,
			})
		}
	}
	return schedule.Entry{
		ID:        session.ID,
		TrainerID: session.TrainerID,
		MemberIDs: session.MemberIDs,
		Timing:    timing,
		Hours:     session.DurationHours,
		Price:     session.Price,
		PtNumber:  session.PtSessionNumber,
		Cancelled: session.IsCancelled,
	}
}

func trainerIDs(sessions []models.Session) []int64 {
	seen := make(map[int64]struct{})
	ids := make([]int64, 0)
	for _, session := range sessions {
		if _, ok := seen[session.TrainerID]; ok {
			continue
		}
		seen[session.TrainerID] = struct{}{}
		ids = append(ids, session.TrainerID)
	}
	return ids
}

func memberIDs(sessions []models.Session) []int64 {
	seen := make(map[int64]struct{})
	ids := make([]int64, 0)
	for _, session := range sessions {
		for _, id := range session.MemberIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

func joinNames(ids []int64, names map[int64]string) string {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, 0, len(sorted))
	for _, id := range sorted {
		if name, ok := names[id]; ok && name != "" {
			parts = append(parts, name)
			continue
		}
		parts = append(parts, fmt.Sprintf("Member %d", id))
	}
	return strings.Join(parts, ", ")
}
