package repository

import (
	"context"

	"github.com/hadi-makki/gymleb-api/internal/models"
)

type MemberRepository struct {
	db DBTX
}

func NewMemberRepository(db DBTX) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) GetByID(ctx context.Context, memberID int64) (*models.Member, error) {
	query := `
		SELECT id, gym_id, full_name, email, created_at, updated_at
		FROM members
		WHERE id = $1
	`
	var member models.Member
	err := r.db.QueryRow(ctx, query, memberID).Scan(
		&member.ID,
		&member.GymID,
		&member.FullName,
		&member.Email,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// MissingIDs reports which of the given member ids do not exist, so a
// booking can fail fast with the exact offenders before writing anything.
func (r *MemberRepository) MissingIDs(ctx context.Context, memberIDs []int64) ([]int64, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, "SELECT id FROM members WHERE id = ANY($1)", memberIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[int64]struct{}, len(memberIDs))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []int64
	for _, id := range memberIDs {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// NamesByIDs returns full names for export rows.
func (r *MemberRepository) NamesByIDs(ctx context.Context, memberIDs []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(memberIDs))
	if len(memberIDs) == 0 {
		return names, nil
	}

	rows, err := r.db.Query(ctx, "SELECT id, full_name FROM members WHERE id = ANY($1)", memberIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}
