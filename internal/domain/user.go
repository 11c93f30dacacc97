package domain

// User is opaque to the engine; referenced by id only. The row exists so
// foreign keys from Job have something to point at and so the retention
// and dispatch paths can validate ownership without reaching into an
// external identity system.
type User struct {
	ID string `gorm:"column:id;primaryKey" json:"id"`
}

func (User) TableName() string { return "app_user" }
