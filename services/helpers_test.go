package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lashstudio-backend/models"
	"lashstudio-backend/utils"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.Slot{},
		&models.Booking{},
	))
	return db
}

// gatewayStub is a local payment gateway with switchable failure modes.
type gatewayStub struct {
	srv          *httptest.Server
	payments     int
	refunds      int
	failPayments bool
	failRefunds  bool
}

func newGatewayStub(t *testing.T) *gatewayStub {
	t.Helper()
	stub := &gatewayStub{}
	mux := http.NewServeMux()
	mux.HandleFunc("/payments", func(w http.ResponseWriter, r *http.Request) {
		stub.payments++
		if stub.failPayments {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id": fmt.Sprintf("pay_%d", stub.payments),
			"confirmation": map[string]string{
				"confirmation_url": "https://gateway.test/checkout",
			},
		})
	})
	mux.HandleFunc("/refunds", func(w http.ResponseWriter, r *http.Request) {
		stub.refunds++
		if stub.failRefunds {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "succeeded"})
	})
	stub.srv = httptest.NewServer(mux)
	t.Cleanup(stub.srv.Close)
	return stub
}

func (g *gatewayStub) gateway() *PaymentGateway {
	return NewPaymentGatewayWithBase(g.srv.URL, "shop", "secret", "https://return.test")
}

func testNotifier() *Notifier {
	return &Notifier{enabled: false}
}

func createTestService(t *testing.T, db *gorm.DB, durationMin int) models.Service {
	t.Helper()
	service := models.Service{
		Name:        "Lash extensions",
		Price:       2500,
		Duration:    durationMin,
		IsActive:    true,
		ServiceType: models.ServiceTypeMain,
	}
	require.NoError(t, db.Create(&service).Error)
	return service
}

func createTestAddon(t *testing.T, db *gorm.DB) models.Service {
	t.Helper()
	addon := models.Service{
		Name:        "Lower lashes",
		Price:       500,
		Duration:    20,
		IsActive:    true,
		ServiceType: models.ServiceTypeAddon,
	}
	require.NoError(t, db.Create(&addon).Error)
	return addon
}

func createTestSlots(t *testing.T, db *gorm.DB, date string, hours ...int) []models.Slot {
	t.Helper()
	slots := make([]models.Slot, 0, len(hours))
	for _, h := range hours {
		slot := models.Slot{
			Date:      date,
			StartTime: fmt.Sprintf("%02d:00", h),
			EndTime:   fmt.Sprintf("%02d:00", h+1),
		}
		require.NoError(t, db.Create(&slot).Error)
		slots = append(slots, slot)
	}
	return slots
}

func dateFromNow(days int) string {
	return time.Now().AddDate(0, 0, days).Format(utils.DateFormat)
}

func newClientID() uuid.UUID {
	return uuid.New()
}

// confirmPaidForTest fakes a successful payment webhook outcome.
func confirmPaidForTest(t *testing.T, db *gorm.DB, bookingID uuid.UUID) {
	t.Helper()
	require.NoError(t, db.Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Updates(map[string]interface{}{
			"status":         models.BookingConfirmed,
			"payment_status": models.PaymentPaid,
		}).Error)
}
