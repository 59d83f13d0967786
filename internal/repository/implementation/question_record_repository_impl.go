package implementation

import (
	"context"
	"errors"
	"time"

	"ai-booktutor-be/internal/entity"
	"ai-booktutor-be/internal/mapper"
	"ai-booktutor-be/internal/model"
	"ai-booktutor-be/internal/repository/contract"
	"ai-booktutor-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestionRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewQuestionRecordRepository(db *gorm.DB) contract.QuestionRecordRepository {
	return &QuestionRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *QuestionRecordRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *QuestionRecordRepositoryImpl) Create(ctx context.Context, record *entity.QuestionRecord) error {
	m := r.mapper.QuestionToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.QuestionToEntity(m)
	return nil
}

func (r *QuestionRecordRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.QuestionRecord, error) {
	var m model.QuestionRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.QuestionToEntity(&m), nil
}

func (r *QuestionRecordRepositoryImpl) UpdateUserAnswer(ctx context.Context, id uuid.UUID, answer string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.QuestionRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"user_answer": answer,
			"updated_at":  now,
		}).Error
}
