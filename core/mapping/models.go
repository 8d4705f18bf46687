package mapping

import "time"

// TableName is the table holding mapping records.
const TableName = "catalog_mappings"

// SyncStatus is the outcome of the last sync of a record.
type SyncStatus string

const (
	StatusCreated SyncStatus = "created"
	StatusUpdated SyncStatus = "updated"
	StatusSynced  SyncStatus = "synced"
	StatusError   SyncStatus = "error"
)

// MappingRecord links a local catalog entry to its remote product and current price.
type MappingRecord struct {
	ID              uint       `gorm:"primaryKey;column:id" json:"-"`
	LocalID         string     `gorm:"column:local_id;type:varchar(191);uniqueIndex;not null" json:"local_id"`
	LocalName       string     `gorm:"column:local_name;type:varchar(255)" json:"local_name"`
	RemoteProductID string     `gorm:"column:remote_product_id;type:varchar(191);uniqueIndex;not null" json:"remote_product_id"`
	RemotePriceID   string     `gorm:"column:remote_price_id;type:varchar(191)" json:"remote_price_id"`
	PriceAmount     int64      `gorm:"column:price_amount;not null" json:"price_amount"`
	SyncStatus      SyncStatus `gorm:"column:sync_status;type:varchar(16);not null" json:"sync_status"`
	LastSyncedAt    time.Time  `gorm:"column:last_synced_at" json:"last_synced_at"`
	Active          bool       `gorm:"column:active;not null" json:"active"`
}

// TableName overrides the gorm table name.
func (MappingRecord) TableName() string {
	return TableName
}

// Columns lists the persisted columns a valid schema must carry.
var Columns = []string{
	"id",
	"local_id",
	"local_name",
	"remote_product_id",
	"remote_price_id",
	"price_amount",
	"sync_status",
	"last_synced_at",
	"active",
}
