package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"biblioteca/database"
)

// PageSize is the fixed number of records per listing page
const PageSize = 20

// AuditService appends to and queries the append-only change history
type AuditService struct {
	db *gorm.DB
}

// NewAuditService creates an AuditService on the given database
func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// AuditFilter narrows a history query; zero values mean no filter
type AuditFilter struct {
	EntityKind string
	EntityID   uint
	ActorID    uint
}

// AuditRecord is one history entry with its target entity resolved.
// Entity is nil when the target has since been deleted.
type AuditRecord struct {
	Entry  database.AuditEntry `json:"entry"`
	Entity interface{}         `json:"entity"`
}

// AuditPage is one page of history records, newest first
type AuditPage struct {
	Records []AuditRecord `json:"records"`
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	Pages   int           `json:"pages"`
}

// entityResolvers dispatches entity lookup on the kind tag. Lookups that
// miss resolve to nil: the entity may legitimately have been deleted.
var entityResolvers = map[string]func(*gorm.DB, uint) (interface{}, error){
	database.EntityBook: func(db *gorm.DB, id uint) (interface{}, error) {
		var book database.Book
		if err := db.First(&book, id).Error; err != nil {
			return nil, err
		}
		return &book, nil
	},
	database.EntityLoan: func(db *gorm.DB, id uint) (interface{}, error) {
		var loan database.Loan
		if err := db.Preload("Book").Preload("User").First(&loan, id).Error; err != nil {
			return nil, err
		}
		return &loan, nil
	},
	database.EntityUser: func(db *gorm.DB, id uint) (interface{}, error) {
		var user database.User
		if err := db.First(&user, id).Error; err != nil {
			return nil, err
		}
		return &user, nil
	},
}

// Record appends one immutable entry inside the caller's transaction.
// The timestamp is server-assigned; there is no update or delete counterpart.
func (s *AuditService) Record(tx *gorm.DB, actorID *uint, entityKind, action string, entityID uint, details string, prevState, newState *string) (*database.AuditEntry, error) {
	if _, ok := entityResolvers[entityKind]; !ok {
		return nil, fmt.Errorf("%w: unknown entity kind %q", ErrValidation, entityKind)
	}

	entry := database.AuditEntry{
		CreatedAt:  time.Now(),
		UserID:     actorID,
		EntityKind: entityKind,
		EntityID:   entityID,
		Action:     action,
		Details:    details,
		PrevState:  prevState,
		NewState:   newState,
	}

	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// Query returns one page of history entries matching the filter, most recent
// first, with each entry's target entity resolved by kind
func (s *AuditService) Query(filter AuditFilter, page int) (*AuditPage, error) {
	if filter.EntityKind != "" {
		if _, ok := entityResolvers[filter.EntityKind]; !ok {
			return nil, fmt.Errorf("%w: unknown entity kind %q", ErrValidation, filter.EntityKind)
		}
	}
	if page < 1 {
		page = 1
	}

	query := s.db.Model(&database.AuditEntry{})
	if filter.EntityKind != "" {
		query = query.Where("entity_kind = ?", filter.EntityKind)
	}
	if filter.EntityID != 0 {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if filter.ActorID != 0 {
		query = query.Where("user_id = ?", filter.ActorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var entries []database.AuditEntry
	err := query.Preload("User").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * PageSize).
		Limit(PageSize).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	records := make([]AuditRecord, 0, len(entries))
	for _, entry := range entries {
		entity, err := s.resolveEntity(entry.EntityKind, entry.EntityID)
		if err != nil {
			return nil, err
		}
		records = append(records, AuditRecord{Entry: entry, Entity: entity})
	}

	pages := int((total + PageSize - 1) / PageSize)
	return &AuditPage{Records: records, Total: total, Page: page, Pages: pages}, nil
}

func (s *AuditService) resolveEntity(kind string, id uint) (interface{}, error) {
	resolver, ok := entityResolvers[kind]
	if !ok {
		return nil, nil
	}
	entity, err := resolver(s.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Entity deleted since the entry was written; tolerated
			return nil, nil
		}
		return nil, err
	}
	return entity, nil
}
