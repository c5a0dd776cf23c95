package helpers

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"supportdesk_backend/internal/app"
	"supportdesk_backend/internal/auth"
	"supportdesk_backend/internal/config"
	"supportdesk_backend/internal/models"
	"supportdesk_backend/ws"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// TestServer - общий httptest-сервер поверх тестовой БД.
// Тесты изолируются через ClearTables, а не пересозданием сервера.
type TestServer struct {
	Server *httptest.Server
	DB     *gorm.DB
	Hub    *ws.Hub
}

// NewTestServer поднимает сервер на тестовой БД из DATABASE_URL
func NewTestServer(t *testing.T) *TestServer {
	config.LoadConfig()
	cfg := config.GetConfig()
	dsn := cfg.Database.DSN

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("Не удалось подключиться к тестовой БД (%s): %v", dsn, err)
	}

	if err := db.AutoMigrate(&models.Message{}, &models.Notification{}); err != nil {
		t.Fatalf("Не удалось выполнить AutoMigrate для тестовой БД: %v", err)
	}

	hub := ws.NewHub()
	router := app.SetupRouter(cfg, db, hub)
	server := httptest.NewServer(router)

	log.Printf("Тестовый сервер запущен, тестовая БД (%s) настроена", dsn)

	return &TestServer{
		Server: server,
		DB:     db,
		Hub:    hub,
	}
}

func (ts *TestServer) Close() {
	ts.Server.Close()
	ts.Hub.Shutdown()
	sqlDB, _ := ts.DB.DB()
	sqlDB.Close()
}

// ClearTables очищает все таблицы между тестами
func (ts *TestServer) ClearTables() {
	err := ts.DB.Exec("TRUNCATE TABLE messages, notifications RESTART IDENTITY CASCADE").Error
	if err != nil {
		log.Fatalf("Не удалось очистить таблицы: %v", err)
	}
}

// ClientToken выпускает bearer-токен клиентской стороны
func ClientToken(t *testing.T, email string) string {
	token, err := auth.GenerateToken(email, models.RoleClient)
	if err != nil {
		t.Fatalf("Не удалось выпустить клиентский токен: %v", err)
	}
	return token
}

// AdminToken выпускает bearer-токен админской стороны
func AdminToken(t *testing.T) string {
	return AdminTokenFor(t, config.GetConfig().Support.AdminEmail)
}

// AdminTokenFor выпускает админский токен для персональной identity
// (оператор поддержки со своим email)
func AdminTokenFor(t *testing.T, email string) string {
	token, err := auth.GenerateToken(email, models.RoleAdmin)
	if err != nil {
		t.Fatalf("Не удалось выпустить админский токен: %v", err)
	}
	return token
}

// SendRequest шлет JSON-запрос на тестовый сервер и возвращает ответ с телом
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	url := ts.Server.URL + path

	var reqBody io.Reader = nil
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Ошибка кодирования JSON для запроса: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("Ошибка создания HTTP-запроса: %v", err)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := ts.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("Ошибка отправки HTTP-запроса: %v", err)
	}

	resBodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("Ошибка чтения тела ответа: %v", err)
	}
	defer res.Body.Close()

	return res, string(resBodyBytes)
}
