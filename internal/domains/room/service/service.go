package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"time"

	"resort/config"
	"resort/infras/otel"
	"resort/infras/s3"
	bookingRepo "resort/internal/domains/booking/repository"
	"resort/internal/domains/room/model"
	"resort/internal/domains/room/model/dto"
	"resort/internal/domains/room/repository"
	"resort/shared"
	"resort/shared/cache"
	"resort/shared/constant"
	gDto "resort/shared/dto"
	"resort/shared/failure"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetRoom    = "room:get"
	cacheGetAllRoom = "room:gets"
	cacheCountRoom  = "room:count"
)

var errRoomNotFound = failure.NotFound("room not found")

type Room interface {
	Create(ctx context.Context, req dto.CreateRoomRequest) (dto.RoomResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRoomsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.RoomResponse, error)
	Update(ctx context.Context, req dto.UpdateRoomRequest, id string) error
	Delete(ctx context.Context, id string) error
	UploadImages(ctx context.Context, req dto.UploadImagesRequest, id string) (dto.RoomResponse, error)
	RemoveImage(ctx context.Context, req dto.RemoveImageRequest, id string) error
	Availability(ctx context.Context, id string, checkIn, checkOut time.Time) (dto.AvailabilityResponse, error)
}

type serviceImpl struct {
	repo        repository.Room
	bookingRepo bookingRepo.Booking
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
	s3          s3.S3
}

func New(repo repository.Room, bookingRepo bookingRepo.Booking, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, s3 s3.S3) Room {
	return &serviceImpl{
		repo:        repo,
		bookingRepo: bookingRepo,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
		s3:          s3,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateRoomRequest) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	room := req.ToModel(user)

	if err = s.repo.Insert(ctx, room); err != nil {
		log.Error().Err(err).Msg("failed to create room")

		return res, fmt.Errorf("failed to create room: %w", err)
	}

	s.invalidateLists(ctx)

	res.FromModel(room)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	key := shared.BuildCacheKeyWithQuery(cacheGetAllRoom, req, filter)

	return cache.Fetch(ctx, s.cache, key, s.cfg.Cache.TTL, func(ctx context.Context) (page dto.GetRoomsResponse, err error) {
		total, err := s.Count(ctx, req, filter)
		if err != nil {
			return page, err
		}

		models, err := s.repo.GetAll(ctx, req, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to get rooms")

			return page, fmt.Errorf("failed to get rooms: %w", err)
		}

		page.FromModels(models, total, req.Limit)

		return page, nil
	})
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	key := shared.BuildCacheKeyWithQuery(cacheCountRoom, req, filter)

	return cache.Fetch(ctx, s.cache, key, s.cfg.Cache.TTL, func(ctx context.Context) (int, error) {
		total, err := s.repo.Count(ctx, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to count rooms")

			return 0, fmt.Errorf("failed to count rooms: %w", err)
		}

		return total, nil
	})
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return cache.Fetch(ctx, s.cache, shared.BuildCacheKey(cacheGetRoom, id), s.cfg.Cache.TTL,
		func(ctx context.Context) (found dto.RoomResponse, err error) {
			room, err := s.get(ctx, id)
			if err != nil {
				return found, err
			}

			found.FromModel(room)

			return found, nil
		})
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateRoomRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	if _, err = s.get(ctx, id); err != nil {
		return err
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, user), shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to update room")

		return fmt.Errorf("failed to update room: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	room, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		if shared.IsFkViolation(err) {
			return failure.Conflict("room has bookings and cannot be deleted")
		}

		log.Error().Err(err).Msg("failed to delete room")

		return fmt.Errorf("failed to delete room: %w", err)
	}

	for _, url := range room.Images {
		s.deleteImage(ctx, url)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) UploadImages(ctx context.Context, req dto.UploadImagesRequest, id string) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UploadImages")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	room, err := s.get(ctx, id)
	if err != nil {
		return res, err
	}

	uploaded := make([]string, 0, len(req.Images))

	for _, header := range req.Images {
		file, err := header.Open()
		if err != nil {
			s.rollbackUploads(ctx, uploaded)

			return res, failure.BadRequest(err)
		}

		key := path.Join(model.EntityName, uuid.NewString()+filepath.Ext(header.Filename))

		url, err := s.s3.Put(ctx, key, header.Header.Get(constant.RequestHeaderContentType), file, header.Size)
		file.Close()

		if err != nil {
			log.Error().Err(err).Msg("failed to upload room image")
			s.rollbackUploads(ctx, uploaded)

			return res, fmt.Errorf("failed to upload image: %w", err)
		}

		uploaded = append(uploaded, url)
	}

	room.Images = append(room.Images, uploaded...)

	fields := shared.TransformFields(struct{}{}, user)
	fields[model.FieldImages] = room.Images

	if err = s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to save room images")
		s.rollbackUploads(ctx, uploaded)

		return res, fmt.Errorf("failed to save room images: %w", err)
	}

	s.invalidate(ctx, id)

	res.FromModel(room)

	return res, nil
}

func (s *serviceImpl) RemoveImage(ctx context.Context, req dto.RemoveImageRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RemoveImage")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	room, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	if !slices.Contains(room.Images, req.URL) {
		return failure.NotFound("image not found")
	}

	images := pq.StringArray(slices.DeleteFunc(slices.Clone(room.Images), func(url string) bool {
		return url == req.URL
	}))

	fields := shared.TransformFields(struct{}{}, user)
	fields[model.FieldImages] = images

	if err = s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to remove room image")

		return fmt.Errorf("failed to remove room image: %w", err)
	}

	s.deleteImage(ctx, req.URL)
	s.invalidate(ctx, id)

	return nil
}

// Availability reports the units of a room type still free over [checkIn, checkOut).
func (s *serviceImpl) Availability(ctx context.Context, id string, checkIn, checkOut time.Time) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Availability")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !checkOut.After(checkIn) {
		return res, failure.BadRequestFromString("Check-out must be after check-in")
	}

	room, err := s.get(ctx, id)
	if err != nil {
		return res, err
	}

	booked, err := s.bookingRepo.BookedUnits(ctx, id, checkIn, checkOut)
	if err != nil {
		log.Error().Err(err).Msg("failed to count booked units")

		return res, fmt.Errorf("failed to count booked units: %w", err)
	}

	return dto.AvailabilityResponse{
		RoomID:    room.ID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Inventory: room.Inventory,
		Booked:    booked,
		Available: max(room.Inventory-booked, 0),
	}, nil
}

func (s *serviceImpl) get(ctx context.Context, id string) (model.Room, error) {
	room, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return room, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return room, errRoomNotFound
	}

	return room, nil
}

func (s *serviceImpl) deleteImage(ctx context.Context, url string) {
	key := s.s3.KeyFromURL(url)
	if key == constant.Empty {
		return
	}

	if err := s.s3.Delete(ctx, key); err != nil {
		log.Error().Err(err).Str("url", url).Msg("failed to delete room image")
	}
}

func (s *serviceImpl) rollbackUploads(ctx context.Context, urls []string) {
	for _, url := range urls {
		s.deleteImage(ctx, url)
	}
}

func (s *serviceImpl) invalidateLists(ctx context.Context) {
	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllRoom)
		shared.InvalidateCaches(c, s.cache, cacheCountRoom)
	}()
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetRoom, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete room cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllRoom)
		shared.InvalidateCaches(c, s.cache, cacheCountRoom)
	}()
}
