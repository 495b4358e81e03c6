package contributions

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Mranger2024/plasticwatcha/pkg/pagination"
	"github.com/Mranger2024/plasticwatcha/pkg/query"
	"github.com/Mranger2024/plasticwatcha/pkg/repository"
	"github.com/Mranger2024/plasticwatcha/pkg/storage"
)

// Image slot names double as the blob key suffix for each attachment.
const (
	slotProduct      = "product"
	slotBackside     = "backside"
	slotRecycling    = "recycling"
	slotManufacturer = "manufacturer"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a contribution repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "contributions"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Contribution], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "BrandSuggestion", "PlasticTypeSuggestion", "BeachName")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count contributions: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanContribution)
	if err != nil {
		return nil, fmt.Errorf("query contributions: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Contribution, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanContribution)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Create(ctx context.Context, cmd SubmitCommand) (*Contribution, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()

	uploaded, urls, err := r.uploadImages(ctx, id, cmd)
	if err != nil {
		r.deleteBlobs(ctx, uploaded)
		return nil, fmt.Errorf("upload contribution images: %w", err)
	}

	createdAt := time.Now().UTC()
	if cmd.CreatedAt != nil {
		createdAt = cmd.CreatedAt.UTC()
	}

	q := `
		INSERT INTO contributions(
			id, user_id, status, created_at, updated_at, latitude, longitude,
			beach_name, brand_suggestion, plastic_type_suggestion, notes,
			product_image_url, backside_image_url, recycling_image_url, manufacturer_image_url
		)
		VALUES ($1, $2, $3, $4, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, user_id, status, created_at, updated_at, latitude, longitude,
				  beach_name, brand_suggestion, plastic_type_suggestion, notes,
				  product_image_url, backside_image_url, recycling_image_url, manufacturer_image_url`

	insertArgs := []any{
		id,
		cmd.UserID,
		StatusPending,
		createdAt,
		cmd.Latitude,
		cmd.Longitude,
		cmd.BeachName,
		cmd.BrandSuggestion,
		cmd.PlasticTypeSuggestion,
		cmd.Notes,
		urls[slotProduct],
		nullable(urls, slotBackside),
		nullable(urls, slotRecycling),
		nullable(urls, slotManufacturer),
	}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Contribution, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanContributionRow)
	})

	if err != nil {
		r.deleteBlobs(ctx, uploaded)
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("contribution created", "id", c.ID, "user_id", c.UserID)
	return &c, nil
}

func (r *repo) UpdateSuggestions(ctx context.Context, id, ownerID uuid.UUID, cmd UpdateCommand) (*Contribution, error) {
	q := `
		UPDATE contributions SET
			brand_suggestion = COALESCE($1, brand_suggestion),
			plastic_type_suggestion = COALESCE($2, plastic_type_suggestion),
			beach_name = COALESCE($3, beach_name),
			notes = COALESCE($4, notes),
			updated_at = NOW()
		WHERE id = $5 AND user_id = $6 AND status = $7
		RETURNING id, user_id, status, created_at, updated_at, latitude, longitude,
				  beach_name, brand_suggestion, plastic_type_suggestion, notes,
				  product_image_url, backside_image_url, recycling_image_url, manufacturer_image_url`

	args := []any{
		cmd.BrandSuggestion,
		cmd.PlasticTypeSuggestion,
		cmd.BeachName,
		cmd.Notes,
		id,
		ownerID,
		StatusPending,
	}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Contribution, error) {
		return repository.QueryOne(ctx, tx, q, args, scanContributionRow)
	})

	if err != nil {
		return nil, r.editFailure(ctx, id, ownerID, err)
	}

	r.logger.Info("contribution updated", "id", id)
	return &c, nil
}

func (r *repo) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM contributions WHERE id = $1 AND user_id = $2 AND status = $3",
			id, ownerID, StatusPending,
		)
		return struct{}{}, err
	})

	if err != nil {
		return r.editFailure(ctx, id, ownerID, err)
	}

	keys := []string{
		blobKey(id, slotProduct),
		blobKey(id, slotBackside),
		blobKey(id, slotRecycling),
		blobKey(id, slotManufacturer),
	}
	r.deleteBlobs(ctx, keys)

	r.logger.Info("contribution deleted", "id", id)
	return nil
}

func (r *repo) OwnedBy(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	var owner uuid.UUID
	err := r.db.QueryRowContext(
		ctx,
		"SELECT user_id FROM contributions WHERE id = $1",
		id,
	).Scan(&owner)

	if err != nil {
		return false, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return owner == userID, nil
}

// editFailure distinguishes a missing contribution from one the caller may
// not edit: a zero-row owner-scoped write against an existing record means
// the record left pending or belongs to someone else.
func (r *repo) editFailure(ctx context.Context, id, ownerID uuid.UUID, err error) error {
	mapped := repository.MapError(err, ErrNotFound, ErrDuplicate)
	if mapped != ErrNotFound {
		return mapped
	}

	owned, ownedErr := r.OwnedBy(ctx, id, ownerID)
	if ownedErr != nil {
		return ErrNotFound
	}
	if owned {
		return ErrNotEditable
	}
	return ErrNotFound
}

func (r *repo) uploadImages(ctx context.Context, id uuid.UUID, cmd SubmitCommand) ([]string, map[string]string, error) {
	slots := []struct {
		name  string
		image *ImagePayload
	}{
		{slotProduct, &cmd.ProductImage},
		{slotBackside, cmd.BacksideImage},
		{slotRecycling, cmd.RecyclingImage},
		{slotManufacturer, cmd.ManufacturerImage},
	}

	uploaded := make([]string, 0, len(slots))
	urls := make(map[string]string, len(slots))

	for _, slot := range slots {
		if slot.image == nil || len(slot.image.Data) == 0 {
			continue
		}

		key := blobKey(id, slot.name)
		url, err := r.storage.Upload(ctx, key, bytes.NewReader(slot.image.Data), slot.image.ContentType)
		if err != nil {
			return uploaded, nil, err
		}

		uploaded = append(uploaded, key)
		urls[slot.name] = url
	}

	return uploaded, urls, nil
}

func (r *repo) deleteBlobs(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := r.storage.Delete(ctx, key); err != nil && err != storage.ErrNotFound {
			r.logger.Warn("blob cleanup failed", "key", key, "error", err)
		}
	}
}

func blobKey(id uuid.UUID, slot string) string {
	return fmt.Sprintf("contributions/%s/%s", id, slot)
}

func nullable(urls map[string]string, slot string) *string {
	if url, ok := urls[slot]; ok {
		return &url
	}
	return nil
}

// scanContributionRow scans a bare contributions row (no classification join).
func scanContributionRow(s repository.Scanner) (Contribution, error) {
	var c Contribution
	err := s.Scan(
		&c.ID,
		&c.UserID,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.Latitude,
		&c.Longitude,
		&c.BeachName,
		&c.BrandSuggestion,
		&c.PlasticTypeSuggestion,
		&c.Notes,
		&c.ProductImageURL,
		&c.BacksideImageURL,
		&c.RecyclingImageURL,
		&c.ManufacturerImageURL,
	)
	return c, err
}
