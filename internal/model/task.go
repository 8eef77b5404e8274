package model

import (
	"math"
	"time"
)

// Task is a personal task owned by exactly one user.
type Task struct {
	ID          string    `bson:"_id"`
	OwnerID     string    `bson:"owner_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	Category    string    `bson:"category"`
	Status      string    `bson:"status"`
	Deadline    time.Time `bson:"deadline"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

// TimeUnit is the unit of a relative deadline offset.
type TimeUnit string

const (
	UnitMinutes TimeUnit = "minutes"
	UnitHours   TimeUnit = "hours"
	UnitDays    TimeUnit = "days"
	UnitWeeks   TimeUnit = "weeks"
)

// Unit returns the length of a single unit. ok is false for unknown units.
func (u TimeUnit) Unit() (d time.Duration, ok bool) {
	switch u {
	case UnitMinutes:
		return time.Minute, true
	case UnitHours:
		return time.Hour, true
	case UnitDays:
		return 24 * time.Hour, true
	case UnitWeeks:
		return 7 * 24 * time.Hour, true
	}
	return 0, false
}

// MaxAmount is the largest amount of u that still fits in a time.Duration.
func (u TimeUnit) MaxAmount() int64 {
	unit, ok := u.Unit()
	if !ok {
		return 0
	}
	return math.MaxInt64 / int64(unit)
}

// Duration converts amount units into a time.Duration. ok is false for
// unknown units, negative amounts and amounts that would overflow.
func (u TimeUnit) Duration(amount int) (d time.Duration, ok bool) {
	unit, ok := u.Unit()
	if !ok || amount < 0 || int64(amount) > u.MaxAmount() {
		return 0, false
	}
	return time.Duration(amount) * unit, true
}

// TaskPatch is a partial task update. Nil fields are left as stored.
type TaskPatch struct {
	Name        *string
	Description *string
	Category    *string
	Status      *string
	Deadline    *time.Time
	UpdatedAt   time.Time
}

// Apply copies the fields set in p onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Deadline != nil {
		t.Deadline = *p.Deadline
	}
	t.UpdatedAt = p.UpdatedAt
}
