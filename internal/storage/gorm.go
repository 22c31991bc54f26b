package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"api_dealership/internal/catalog"
	"api_dealership/internal/sales"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type clientRow struct {
	ID             string `gorm:"primaryKey;size:36"`
	Name           string `gorm:"size:150;not null"`
	Identification string `gorm:"size:30;index"`
	Email          string `gorm:"size:150"`
	Phone          string `gorm:"size:30"`
	Status         string `gorm:"size:16;not null;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (clientRow) TableName() string { return "clients" }

type vehicleRow struct {
	ID        string          `gorm:"primaryKey;size:36"`
	Brand     string          `gorm:"size:60;not null"`
	Model     string          `gorm:"size:60;not null"`
	Year      int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Status    string          `gorm:"size:16;not null;index"`
	ClientID  string          `gorm:"size:36;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (vehicleRow) TableName() string { return "vehicles" }

type saleRow struct {
	ID                string           `gorm:"primaryKey;size:36"`
	SaleNumber        string           `gorm:"size:32;uniqueIndex;not null"`
	ClientID          string           `gorm:"size:36;index;not null"`
	VehicleID         string           `gorm:"size:36;index;not null"`
	TotalPrice        decimal.Decimal  `gorm:"type:decimal(20,2);not null"`
	PaymentMethod     string           `gorm:"size:16;not null"`
	Salesperson       string           `gorm:"size:100;not null"`
	DownPayment       *decimal.Decimal `gorm:"type:decimal(20,2)"`
	FinancingAmount   *decimal.Decimal `gorm:"type:decimal(20,2)"`
	Installments      int
	SaleDate          time.Time `gorm:"not null"`
	Status            string    `gorm:"size:16;not null;index"`
	ContractGenerated bool      `gorm:"not null;default:false"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (saleRow) TableName() string { return "sales" }

func toClientRow(c catalog.Client) clientRow {
	return clientRow{ID: c.ID, Name: c.Name, Identification: c.Identification, Email: c.Email, Phone: c.Phone, Status: string(c.Status)}
}

func (r clientRow) domain() catalog.Client {
	return catalog.Client{ID: r.ID, Name: r.Name, Identification: r.Identification, Email: r.Email, Phone: r.Phone, Status: catalog.ClientStatus(r.Status)}
}

func toVehicleRow(v catalog.Vehicle) vehicleRow {
	return vehicleRow{ID: v.ID, Brand: v.Brand, Model: v.Model, Year: v.Year, Price: v.Price, Status: string(v.Status), ClientID: v.ClientID}
}

func (r vehicleRow) domain() catalog.Vehicle {
	return catalog.Vehicle{ID: r.ID, Brand: r.Brand, Model: r.Model, Year: r.Year, Price: r.Price, Status: catalog.VehicleStatus(r.Status), ClientID: r.ClientID}
}

func toSaleRow(s sales.Sale) saleRow {
	row := saleRow{
		ID:                s.ID,
		SaleNumber:        s.SaleNumber,
		ClientID:          s.ClientID,
		VehicleID:         s.VehicleID,
		TotalPrice:        s.TotalPrice,
		PaymentMethod:     string(s.Method()),
		Salesperson:       s.Salesperson,
		SaleDate:          s.SaleDate,
		Status:            string(s.Status),
		ContractGenerated: s.ContractGenerated,
	}
	t := sales.TermsOf(s.Payment)
	if t.HasDownPayment {
		down := t.DownPayment
		row.DownPayment = &down
	}
	if t.HasFinancing {
		financed := t.FinancingAmount
		row.FinancingAmount = &financed
		row.Installments = t.Installments
	}
	return row
}

func (r saleRow) domain() (sales.Sale, error) {
	var t sales.Terms
	if r.DownPayment != nil {
		t.HasDownPayment = true
		t.DownPayment = *r.DownPayment
	}
	if r.FinancingAmount != nil {
		t.HasFinancing = true
		t.FinancingAmount = *r.FinancingAmount
	}
	t.Installments = r.Installments

	p, err := sales.RestorePayment(sales.PaymentMethod(r.PaymentMethod), t)
	if err != nil {
		return sales.Sale{}, fmt.Errorf("sale %s: %w", r.ID, err)
	}
	return sales.Sale{
		ID:                r.ID,
		SaleNumber:        r.SaleNumber,
		ClientID:          r.ClientID,
		VehicleID:         r.VehicleID,
		TotalPrice:        r.TotalPrice,
		Payment:           p,
		Salesperson:       r.Salesperson,
		SaleDate:          r.SaleDate,
		Status:            sales.Status(r.Status),
		ContractGenerated: r.ContractGenerated,
	}, nil
}

// GormStorage implements sales.UnitOfWork on a SQL database.
type GormStorage struct {
	db *gorm.DB
}

// NewGormStorage wraps an open connection and migrates the schema.
func NewGormStorage(db *gorm.DB) (*GormStorage, error) {
	if err := db.AutoMigrate(&clientRow{}, &vehicleRow{}, &saleRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &GormStorage{db: db}, nil
}

// OpenMySQL connects to MySQL, retrying while the database starts up.
func OpenMySQL(dsn string, log *zap.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("DB_DSN is required for the mysql store")
	}

	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < 5; i++ {
		db, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			break
		}
		log.Warn("failed to connect to database, retrying", zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after 5 attempts: %w", err)
	}
	log.Info("connected to MySQL")
	return db, nil
}

// Repositories returns repositories bound to the base connection.
func (g *GormStorage) Repositories() sales.Repositories {
	return gormRepositories(g.db)
}

// Transact runs fn inside a database transaction.
func (g *GormStorage) Transact(ctx context.Context, fn func(r sales.Repositories) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormRepositories(tx))
	})
}

// Seed inserts clients and vehicles that are not stored yet.
func (g *GormStorage) Seed(ctx context.Context, clients []catalog.Client, vehicles []catalog.Vehicle) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range clients {
			row := toClientRow(c)
			if err := tx.FirstOrCreate(&row, clientRow{ID: c.ID}).Error; err != nil {
				return err
			}
		}
		for _, v := range vehicles {
			row := toVehicleRow(v)
			if err := tx.FirstOrCreate(&row, vehicleRow{ID: v.ID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func gormRepositories(db *gorm.DB) sales.Repositories {
	return sales.Repositories{
		Clients:  gormClients{db},
		Vehicles: gormVehicles{db},
		Sales:    gormSales{db},
	}
}

func exists(db *gorm.DB, model any, id string) (bool, error) {
	var n int64
	if err := db.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern builds a substring pattern for LIKE ... ESCAPE '!'. The
// wildcards are escaped so the query matches literally.
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(q)) + "%"
}

type gormClients struct{ db *gorm.DB }

func (r gormClients) List(ctx context.Context, f catalog.ClientFilter) ([]catalog.Client, error) {
	q := r.db.WithContext(ctx).Model(&clientRow{})
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	var rows []clientRow
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]catalog.Client, 0, len(rows))
	for _, row := range rows {
		c := row.domain()
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r gormClients) Get(ctx context.Context, id string) (catalog.Client, error) {
	var row clientRow
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return catalog.Client{}, fmt.Errorf("client %s: %w", id, catalog.ErrNotFound)
	}
	if err != nil {
		return catalog.Client{}, err
	}
	return row.domain(), nil
}

func (r gormClients) Create(ctx context.Context, c *catalog.Client) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	row := toClientRow(*c)
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r gormClients) Update(ctx context.Context, c catalog.Client) error {
	if c.ID == "" {
		return catalog.ErrEmptyID
	}
	db := r.db.WithContext(ctx)
	ok, err := exists(db, &clientRow{}, c.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("client %s: %w", c.ID, catalog.ErrNotFound)
	}
	row := toClientRow(c)
	return db.Model(&clientRow{}).Where("id = ?", c.ID).Select("name", "identification", "email", "phone", "status").Updates(&row).Error
}

type gormVehicles struct{ db *gorm.DB }

func (r gormVehicles) List(ctx context.Context, f catalog.VehicleFilter) ([]catalog.Vehicle, error) {
	q := r.db.WithContext(ctx).Model(&vehicleRow{})
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if strings.TrimSpace(f.Query) != "" {
		p := likePattern(f.Query)
		q = q.Where("LOWER(brand) LIKE LOWER(?) ESCAPE '!' OR LOWER(model) LIKE LOWER(?) ESCAPE '!'", p, p)
	}
	var rows []vehicleRow
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]catalog.Vehicle, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.domain())
	}
	return out, nil
}

func (r gormVehicles) Get(ctx context.Context, id string) (catalog.Vehicle, error) {
	return r.take(r.db.WithContext(ctx), id)
}

// GetForUpdate locks the row with SELECT ... FOR UPDATE. SQLite has no
// row locks and serializes writers on its own.
func (r gormVehicles) GetForUpdate(ctx context.Context, id string) (catalog.Vehicle, error) {
	db := r.db.WithContext(ctx)
	if db.Dialector.Name() != "sqlite" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.take(db, id)
}

func (r gormVehicles) take(db *gorm.DB, id string) (catalog.Vehicle, error) {
	var row vehicleRow
	err := db.Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return catalog.Vehicle{}, fmt.Errorf("vehicle %s: %w", id, catalog.ErrNotFound)
	}
	if err != nil {
		return catalog.Vehicle{}, err
	}
	return row.domain(), nil
}

func (r gormVehicles) Create(ctx context.Context, v *catalog.Vehicle) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	row := toVehicleRow(*v)
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r gormVehicles) Update(ctx context.Context, v catalog.Vehicle) error {
	if v.ID == "" {
		return catalog.ErrEmptyID
	}
	db := r.db.WithContext(ctx)
	ok, err := exists(db, &vehicleRow{}, v.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("vehicle %s: %w", v.ID, catalog.ErrNotFound)
	}
	row := toVehicleRow(v)
	return db.Model(&vehicleRow{}).Where("id = ?", v.ID).Select("brand", "model", "year", "price", "status", "client_id").Updates(&row).Error
}

type gormSales struct{ db *gorm.DB }

func (r gormSales) List(ctx context.Context, f sales.SaleFilter) ([]sales.Sale, error) {
	q := r.db.WithContext(ctx).Model(&saleRow{})
	if f.ClientID != "" {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.VehicleID != "" {
		q = q.Where("vehicle_id = ?", f.VehicleID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	var rows []saleRow
	if err := q.Order("sale_number").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]sales.Sale, 0, len(rows))
	for _, row := range rows {
		s, err := row.domain()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r gormSales) Get(ctx context.Context, id string) (sales.Sale, error) {
	var row saleRow
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sales.Sale{}, sales.ErrNotFound
	}
	if err != nil {
		return sales.Sale{}, err
	}
	return row.domain()
}

func (r gormSales) Create(ctx context.Context, s *sales.Sale) error {
	if s.ID == "" {
		return sales.ErrEmptyID
	}
	db := r.db.WithContext(ctx)
	var n int64
	if err := db.Model(&saleRow{}).Where("id = ? OR sale_number = ?", s.ID, s.SaleNumber).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("sale %s: %w", s.ID, sales.ErrDuplicate)
	}
	row := toSaleRow(*s)
	return db.Create(&row).Error
}

func (r gormSales) Update(ctx context.Context, s sales.Sale) error {
	if s.ID == "" {
		return sales.ErrEmptyID
	}
	db := r.db.WithContext(ctx)
	ok, err := exists(db, &saleRow{}, s.ID)
	if err != nil {
		return err
	}
	if !ok {
		return sales.ErrNotFound
	}
	row := toSaleRow(s)
	return db.Model(&saleRow{}).Where("id = ?", s.ID).
		Select("client_id", "vehicle_id", "total_price", "payment_method", "salesperson",
			"down_payment", "financing_amount", "installments", "status", "contract_generated").
		Updates(&row).Error
}

func (r gormSales) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&saleRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return sales.ErrNotFound
	}
	return nil
}
