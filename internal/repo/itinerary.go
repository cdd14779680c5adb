package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lucamoretti/adventure-together/internal/domain"
)

// ItineraryRepo defines the persistence operations for Itineraries.
type ItineraryRepo interface {
	// Create inserts a new itinerary and returns the persisted record.
	Create(ctx context.Context, it domain.Itinerary) (domain.Itinerary, error)

	// GetByID retrieves an itinerary by its UUID primary key.
	// Returns domain.ErrNotFound if no itinerary with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Itinerary, error)

	// List returns all itineraries ordered by title.
	List(ctx context.Context) ([]domain.Itinerary, error)
}

// pgItineraryRepo is the Postgres implementation of ItineraryRepo.
type pgItineraryRepo struct {
	db db
}

// NewItineraryRepo constructs an ItineraryRepo backed by the provided db connection.
func NewItineraryRepo(db db) ItineraryRepo {
	return &pgItineraryRepo{db: db}
}

const itineraryColumns = `id, title, description, duration_days,
	min_participants, max_participants, planner_id, created_at, updated_at`

// Create inserts a new itinerary row and returns the full persisted record.
func (r *pgItineraryRepo) Create(ctx context.Context, it domain.Itinerary) (domain.Itinerary, error) {
	const q = `
		INSERT INTO itineraries (title, description, duration_days,
		                         min_participants, max_participants, planner_id)
		VALUES (@title, @description, @duration_days,
		        @min_participants, @max_participants, @planner_id)
		RETURNING ` + itineraryColumns

	args := pgx.NamedArgs{
		"title":            it.Title,
		"description":      it.Description,
		"duration_days":    it.DurationDays,
		"min_participants": it.MinParticipants,
		"max_participants": it.MaxParticipants,
		"planner_id":       it.PlannerID,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanItinerary(row)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("repo.ItineraryRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves an itinerary by primary key.
func (r *pgItineraryRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Itinerary, error) {
	const q = `SELECT ` + itineraryColumns + ` FROM itineraries WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanItinerary(row)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("repo.ItineraryRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns all itineraries ordered alphabetically by title.
func (r *pgItineraryRepo) List(ctx context.Context) ([]domain.Itinerary, error) {
	const q = `SELECT ` + itineraryColumns + ` FROM itineraries ORDER BY title ASC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.ItineraryRepo.List: %w", err)
	}
	defer rows.Close()

	var items []domain.Itinerary
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ItineraryRepo.List: scan: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ItineraryRepo.List: rows: %w", err)
	}

	return items, nil
}

// scanItinerary maps a single database row into a domain.Itinerary.
func scanItinerary(s scanner) (domain.Itinerary, error) {
	var (
		it        domain.Itinerary
		id        pgtype.UUID
		plannerID pgtype.UUID
	)

	err := s.Scan(&id, &it.Title, &it.Description, &it.DurationDays,
		&it.MinParticipants, &it.MaxParticipants, &plannerID,
		&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Itinerary{}, domain.ErrNotFound
		}
		return domain.Itinerary{}, err
	}

	it.ID = uuid.UUID(id.Bytes)
	it.PlannerID = uuid.UUID(plannerID.Bytes)

	return it, nil
}
