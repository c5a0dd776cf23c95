package integration_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"supportdesk_backend/internal/models"
	"supportdesk_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// CreateTestNotification - хелпер для быстрого создания уведомлений напрямую
// в БД. Симулирует, как модули тикетов/проектов/инвойсов создают уведомления.
func CreateTestNotification(t *testing.T, db *gorm.DB, userEmail, title, message string) models.Notification {
	notification := models.Notification{
		UserEmail: userEmail,
		Kind:      models.NotificationInfo,
		Title:     title,
		Message:   message,
		IsRead:    false,
	}
	if err := db.Create(&notification).Error; err != nil {
		t.Fatalf("Failed to create test notification: %v", err)
	}
	return notification
}

// TestNotification_UserFlow - E2E "золотой путь" для получателя уведомлений
func TestNotification_UserFlow(t *testing.T) {
	ts := GetTestServer(t)
	ts.ClearTables()

	userToken := helpers.ClientToken(t, "user1@example.com")

	// 1. Вначале непрочитанных нет
	res, bodyStr := ts.SendRequest(t, "GET", "/api/v1/notifications/unread-count", userToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var unreadResponse struct {
		Count int `json:"unread_count"`
	}
	err := json.Unmarshal([]byte(bodyStr), &unreadResponse)
	assert.NoError(t, err)
	assert.Equal(t, 0, unreadResponse.Count, "Вначале непрочитанных уведомлений быть не должно")
	t.Logf("УВЕДОМЛЕНИЯ: Непрочитанных - 0 (200) - Успешно.")

	// 2. Создаем 2 уведомления (симуляция других модулей)
	notif1 := CreateTestNotification(t, ts.DB, "user1@example.com", "Ticket Reply", "Support replied to your ticket")
	_ = CreateTestNotification(t, ts.DB, "user1@example.com", "Invoice Issued", "Invoice INV-7 issued")

	// 3. Непрочитанных стало 2
	res, bodyStr = ts.SendRequest(t, "GET", "/api/v1/notifications/unread-count", userToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	err = json.Unmarshal([]byte(bodyStr), &unreadResponse)
	assert.NoError(t, err)
	assert.Equal(t, 2, unreadResponse.Count)
	t.Logf("УВЕДОМЛЕНИЯ: Непрочитанных - 2 (200) - Успешно.")

	// 4. Список уведомлений, новые первыми
	res, bodyStr = ts.SendRequest(t, "GET", "/api/v1/notifications", userToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var listResponse struct {
		Success       bool                  `json:"success"`
		Count         int                   `json:"count"`
		Notifications []models.Notification `json:"data"`
	}
	err = json.Unmarshal([]byte(bodyStr), &listResponse)
	assert.NoError(t, err)
	assert.True(t, listResponse.Success)
	assert.Equal(t, 2, listResponse.Count)
	require.Len(t, listResponse.Notifications, 2)
	assert.Equal(t, "Invoice Issued", listResponse.Notifications[0].Title)
	assert.Equal(t, "Ticket Reply", listResponse.Notifications[1].Title)
	t.Logf("УВЕДОМЛЕНИЯ: Получение списка (200) - Успешно.")

	// 5. Читаем первое уведомление
	res, bodyStr = ts.SendRequest(t, "PUT", "/api/v1/notifications/"+notif1.ID+"/read", userToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, "Notification marked as read")
	t.Logf("УВЕДОМЛЕНИЯ: Пометить прочитанным (200) - Успешно.")

	// 6. Повторная пометка того же уведомления - такой же успех
	res, _ = ts.SendRequest(t, "PUT", "/api/v1/notifications/"+notif1.ID+"/read", userToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	// 7. Осталось 1 непрочитанное
	res, bodyStr = ts.SendRequest(t, "GET", "/api/v1/notifications/unread-count", userToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	err = json.Unmarshal([]byte(bodyStr), &unreadResponse)
	assert.NoError(t, err)
	assert.Equal(t, 1, unreadResponse.Count)
	t.Logf("УВЕДОМЛЕНИЯ: Непрочитанных - 1 (200) - Успешно.")

	// 8. Читаем все
	res, bodyStr = ts.SendRequest(t, "PUT", "/api/v1/notifications/read-all", userToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var readAll struct {
		Modified int64 `json:"modified"`
	}
	err = json.Unmarshal([]byte(bodyStr), &readAll)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), readAll.Modified)

	// 9. Повторный read-all изменяет 0 строк
	res, bodyStr = ts.SendRequest(t, "PUT", "/api/v1/notifications/read-all", userToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	err = json.Unmarshal([]byte(bodyStr), &readAll)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), readAll.Modified)
	t.Logf("УВЕДОМЛЕНИЯ: read-all идемпотентен - Успешно.")
}

// TestNotification_AdminCreateAndDelivery - ручное создание админом
func TestNotification_AdminCreateAndDelivery(t *testing.T) {
	ts := GetTestServer(t)
	ts.ClearTables()

	adminToken := helpers.AdminToken(t)
	userToken := helpers.ClientToken(t, "user2@example.com")

	// 1. Клиенту создавать уведомления нельзя
	res, _ := ts.SendRequest(t, "POST", "/api/v1/notifications", userToken, map[string]interface{}{
		"userEmail": "user2@example.com",
		"title":     "Self notification",
		"message":   "nope",
	})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	// 2. Админ создает уведомление с типом warning
	res, bodyStr := ts.SendRequest(t, "POST", "/api/v1/notifications", adminToken, map[string]interface{}{
		"userEmail": "user2@example.com",
		"title":     "Maintenance",
		"message":   "Scheduled downtime tonight",
		"type":      "warning",
	})
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	var created models.Notification
	err := json.Unmarshal([]byte(bodyStr), &created)
	assert.NoError(t, err)
	assert.Equal(t, models.NotificationWarning, created.Kind)
	assert.False(t, created.IsRead)

	// 3. Неизвестный тип отклоняется
	res, _ = ts.SendRequest(t, "POST", "/api/v1/notifications", adminToken, map[string]interface{}{
		"userEmail": "user2@example.com",
		"title":     "Weird",
		"message":   "x",
		"type":      "fatal",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	// 4. Получатель видит уведомление в своем списке
	res, bodyStr = ts.SendRequest(t, "GET", "/api/v1/notifications", userToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, "Maintenance")
	t.Logf("УВЕДОМЛЕНИЯ: Создание админом и доставка - Успешно.")
}

// TestNotification_ForeignAccessLooksLikeMissing - чужое уведомление
// неотличимо от несуществующего
func TestNotification_ForeignAccessLooksLikeMissing(t *testing.T) {
	ts := GetTestServer(t)
	ts.ClearTables()

	ownerToken := helpers.ClientToken(t, "owner@example.com")
	strangerToken := helpers.ClientToken(t, "stranger@example.com")

	notif := CreateTestNotification(t, ts.DB, "owner@example.com", "Private", "owner only")

	// Чужому - 404, как и для выдуманного id
	res, _ := ts.SendRequest(t, "PUT", "/api/v1/notifications/"+notif.ID+"/read", strangerToken, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, _ = ts.SendRequest(t, "DELETE", "/api/v1/notifications/"+notif.ID, strangerToken, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	// Владельцу все доступно
	res, _ = ts.SendRequest(t, "PUT", "/api/v1/notifications/"+notif.ID+"/read", ownerToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	t.Logf("УВЕДОМЛЕНИЯ: Чужой доступ скрыт (404) - Успешно.")
}

// TestNotification_DeleteAndClear - удаление одного и очистка всех
func TestNotification_DeleteAndClear(t *testing.T) {
	ts := GetTestServer(t)
	ts.ClearTables()

	userToken := helpers.ClientToken(t, "user3@example.com")

	first := CreateTestNotification(t, ts.DB, "user3@example.com", "First", "x")
	CreateTestNotification(t, ts.DB, "user3@example.com", "Second", "x")
	CreateTestNotification(t, ts.DB, "user3@example.com", "Third", "x")

	// 1. Удаляем одно
	res, bodyStr := ts.SendRequest(t, "DELETE", "/api/v1/notifications/"+first.ID, userToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, "Notification deleted successfully")

	// 2. Повторное удаление того же id - 404
	res, _ = ts.SendRequest(t, "DELETE", "/api/v1/notifications/"+first.ID, userToken, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	// 3. Очищаем остальное
	res, bodyStr = ts.SendRequest(t, "DELETE", "/api/v1/notifications", userToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var clearResponse struct {
		Deleted int64 `json:"deleted"`
	}
	err := json.Unmarshal([]byte(bodyStr), &clearResponse)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), clearResponse.Deleted)

	// 4. Список пуст
	res, bodyStr = ts.SendRequest(t, "GET", "/api/v1/notifications", userToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var listResponse struct {
		Count int `json:"count"`
	}
	err = json.Unmarshal([]byte(bodyStr), &listResponse)
	assert.NoError(t, err)
	assert.Zero(t, listResponse.Count)
	t.Logf("УВЕДОМЛЕНИЯ: Удаление и очистка - Успешно.")
}

// TestNotification_ListCappedAtLimit - список отдает только последние N
func TestNotification_ListCappedAtLimit(t *testing.T) {
	ts := GetTestServer(t)
	ts.ClearTables()

	userToken := helpers.ClientToken(t, "user4@example.com")

	// По умолчанию лимит 20: создаем с запасом
	for i := 0; i < 25; i++ {
		CreateTestNotification(t, ts.DB, "user4@example.com", fmt.Sprintf("Event %d", i), "x")
	}

	res, bodyStr := ts.SendRequest(t, "GET", "/api/v1/notifications", userToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var listResponse struct {
		Count         int                   `json:"count"`
		Notifications []models.Notification `json:"data"`
	}
	err := json.Unmarshal([]byte(bodyStr), &listResponse)
	assert.NoError(t, err)
	assert.Equal(t, 20, listResponse.Count)
	require.Len(t, listResponse.Notifications, 20)
	assert.Equal(t, "Event 24", listResponse.Notifications[0].Title)
	t.Logf("УВЕДОМЛЕНИЯ: Список ограничен лимитом - Успешно.")
}

// TestNotification_RequiresAuth - без токена 401
func TestNotification_RequiresAuth(t *testing.T) {
	ts := GetTestServer(t)

	res, _ := ts.SendRequest(t, "GET", "/api/v1/notifications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = ts.SendRequest(t, "PUT", "/api/v1/notifications/read-all", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	t.Logf("УВЕДОМЛЕНИЯ: Без токена (401) - Успешно.")
}
