package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// --- Response types (дублируются из domain, CLI не импортирует internal пакеты) ---

// OrderResponse - заказ из API.
type OrderResponse struct {
	ID         string         `json:"id"`
	Number     int            `json:"number"`
	ClientID   string         `json:"client_id"`
	ClientName string         `json:"client_name,omitempty"`
	Lots       []LotResponse  `json:"lots,omitempty"`
	Items      []ItemResponse `json:"items,omitempty"`
	CreatedAt  string         `json:"created_at"`
}

// ItemResponse - позиция заказа из API.
type ItemResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// LotResponse - партия из API.
type LotResponse struct {
	ID                   string          `json:"id"`
	Code                 string          `json:"code"`
	OrderID              string          `json:"order_id"`
	ParentID             string          `json:"parent_id,omitempty"`
	ProductID            string          `json:"product_id,omitempty"`
	Quantity             int             `json:"quantity"`
	Status               string          `json:"status"`
	CurrentProcessID     string          `json:"current_process_id,omitempty"`
	CurrentWorkshopID    string          `json:"current_workshop_id,omitempty"`
	CurrentTransporterID string          `json:"current_transporter_id,omitempty"`
	History              []EntryResponse `json:"history,omitempty"`
	CreatedAt            string          `json:"created_at"`
}

// EntryResponse - шаг истории партии из API.
type EntryResponse struct {
	ID         string           `json:"id"`
	Seq        int64            `json:"seq"`
	Process    *ProcessResponse `json:"process,omitempty"`
	WorkshopID string           `json:"workshop_id,omitempty"`
	Status     string           `json:"status"`
	EntryDate  string           `json:"entry_date,omitempty"`
	ExitDate   string           `json:"exit_date,omitempty"`
	Notes      string           `json:"notes,omitempty"`
	Price      *string          `json:"price"`
}

// ProcessName возвращает имя процесса шага или "-".
func (e EntryResponse) ProcessName() string {
	if e.Process == nil {
		return "-"
	}
	return e.Process.Name
}

// ProcessResponse - процесс каталога из API.
type ProcessResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// LotStateResponse - состояние партии после продвижения.
type LotStateResponse struct {
	Status               string `json:"status"`
	CurrentProcessID     string `json:"current_process_id,omitempty"`
	CurrentWorkshopID    string `json:"current_workshop_id,omitempty"`
	CurrentTransporterID string `json:"current_transporter_id,omitempty"`
}

// SplitResponse - результат подразделения.
type SplitResponse struct {
	Parent   LotResponse   `json:"parent"`
	Children []LotResponse `json:"children"`
}

// MoveResponse - результат перемещения.
type MoveResponse struct {
	Entry EntryResponse `json:"entry"`
	Lot   LotResponse   `json:"lot"`
}

// LotMetricsResponse - метрики одной партии.
type LotMetricsResponse struct {
	Lot                 LotResponse `json:"lot"`
	Progress            float64     `json:"progress"`
	RemainingDays       float64     `json:"remaining_days"`
	EstimatedCompletion string      `json:"estimated_completion,omitempty"`
	Cost                string      `json:"cost"`
}

// OrderMetricsResponse - метрики заказа.
type OrderMetricsResponse struct {
	Order         OrderResponse        `json:"order"`
	Lots          []LotMetricsResponse `json:"lots"`
	Progress      float64              `json:"progress"`
	RemainingDays float64              `json:"remaining_days"`
	Cost          string               `json:"cost"`
	LastUpdated   string               `json:"last_updated"`
}

// ProductResponse - продукт из API.
type ProductResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Code      string         `json:"code"`
	HasSizes  bool           `json:"has_sizes"`
	Template  []StepResponse `json:"template,omitempty"`
	CreatedAt string         `json:"created_at"`
}

// StepResponse - шаг шаблона продукта.
type StepResponse struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	Order                 int      `json:"order"`
	EstimatedDurationDays *float64 `json:"estimated_duration_days,omitempty"`
	IsTransport           bool     `json:"is_transport"`
	Price                 *string  `json:"price"`
}

// StepCount - строка дневной сводки.
type StepCount struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Count int    `json:"count"`
}

// DailySummaryResponse - дневная сводка.
type DailySummaryResponse struct {
	Day           string           `json:"day"`
	Total         int              `json:"total"`
	ByWorkshop    []StepCount      `json:"by_workshop"`
	ByProcess     []StepCount      `json:"by_process"`
	ManualRecords []RecordResponse `json:"manual_records"`
}

// RecordResponse - ручная запись журнала из API.
type RecordResponse struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"`
	Description string  `json:"description"`
	Amount      *string `json:"amount"`
	Date        string  `json:"date"`
	User        string  `json:"user,omitempty"`
	OrderID     string  `json:"order_id,omitempty"`
	WorkshopID  string  `json:"workshop_id,omitempty"`
}

// OrderSummaryResponse - строка сводной панели заказов.
type OrderSummaryResponse struct {
	ID            string  `json:"id"`
	Number        int     `json:"number"`
	ClientName    string  `json:"client_name"`
	Contact       string  `json:"contact,omitempty"`
	CreatedAt     string  `json:"created_at"`
	Progress      float64 `json:"progress"`
	RemainingDays float64 `json:"remaining_days"`
	Status        string  `json:"status"`
}

// WorkshopLoadResponse - загрузка цеха.
type WorkshopLoadResponse struct {
	WorkshopID string `json:"workshop_id"`
	ActiveLots int    `json:"active_lots"`
	TotalUnits int    `json:"total_units"`
}

// --- Request types ---

// RecordRequest - ручная запись журнала.
type RecordRequest struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Amount      string `json:"amount,omitempty"`
	Date        string `json:"date,omitempty"`
	User        string `json:"user,omitempty"`
	OrderID     string `json:"order_id,omitempty"`
	WorkshopID  string `json:"workshop_id,omitempty"`
}

// DashboardFilter - фильтры сводной панели заказов. Пустые поля не передаются.
type DashboardFilter struct {
	Client string
	From   string
	To     string
	Status string
}

// CreateOrderRequest - создание заказа.
type CreateOrderRequest struct {
	Number         int           `json:"number"`
	ClientID       string        `json:"client_id,omitempty"`
	ClientName     string        `json:"client_name,omitempty"`
	Contact        string        `json:"contact,omitempty"`
	Items          []ItemRequest `json:"items"`
	CreateRootLots *bool         `json:"create_root_lots,omitempty"`
}

// ItemRequest - позиция заказа.
type ItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AdvanceRequest - продвижение шага.
type AdvanceRequest struct {
	ProcessName   string  `json:"process_name"`
	Target        string  `json:"target"`
	At            string  `json:"at,omitempty"`
	WorkshopID    string  `json:"workshop_id,omitempty"`
	TransporterID string  `json:"transporter_id,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// SubLotRequest - дочерняя партия.
type SubLotRequest struct {
	Code     string `json:"code"`
	Quantity int    `json:"quantity"`
}

// MoveRequest - ручное перемещение.
type MoveRequest struct {
	ProcessID     string `json:"process_id,omitempty"`
	WorkshopID    string `json:"workshop_id,omitempty"`
	TransporterID string `json:"transporter_id,omitempty"`
	EntryDate     string `json:"entry_date,omitempty"`
	ExitDate      string `json:"exit_date,omitempty"`
	Notes         string `json:"notes,omitempty"`
	MarkFinished  bool   `json:"mark_finished,omitempty"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client - HTTP-клиент для API производства.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Orders ---

// CreateOrder создаёт заказ.
func (c *Client) CreateOrder(req CreateOrderRequest) (*OrderResponse, error) {
	var order OrderResponse
	err := c.post("/api/v1/orders", req, &order)
	return &order, err
}

// TrackOrder возвращает заказ с деревом партий.
func (c *Client) TrackOrder(number int) (*OrderResponse, error) {
	var order OrderResponse
	err := c.get("/api/v1/orders/"+strconv.Itoa(number), &order)
	return &order, err
}

// OrderMetrics возвращает прогресс, оставшееся время и стоимость заказа.
func (c *Client) OrderMetrics(number int) (*OrderMetricsResponse, error) {
	var metrics OrderMetricsResponse
	err := c.get("/api/v1/orders/"+strconv.Itoa(number)+"/metrics", &metrics)
	return &metrics, err
}

// --- Lots ---

// GetLot возвращает партию с историей.
func (c *Client) GetLot(id string) (*LotResponse, error) {
	var lot LotResponse
	err := c.get("/api/v1/lots/"+id, &lot)
	return &lot, err
}

// GeneratePlan создаёт план партии. Пустой productID - продукт партии.
func (c *Client) GeneratePlan(lotID, productID string) ([]EntryResponse, error) {
	var body any
	if productID != "" {
		body = map[string]string{"product_id": productID}
	}

	resp, err := c.do(http.MethodPost, "/api/v1/lots/"+lotID+"/plan", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var entries []EntryResponse
	err = c.decodeList(resp, &entries)
	return entries, err
}

// AdvanceProcess продвигает шаг партии.
func (c *Client) AdvanceProcess(lotID string, req AdvanceRequest) (*LotStateResponse, error) {
	var state LotStateResponse
	err := c.post("/api/v1/lots/"+lotID+"/advance", req, &state)
	return &state, err
}

// RefreshLotState пересчитывает состояние партии.
func (c *Client) RefreshLotState(lotID string) (*LotStateResponse, error) {
	var state LotStateResponse
	err := c.post("/api/v1/lots/"+lotID+"/refresh", nil, &state)
	return &state, err
}

// SplitLot подразделяет партию.
func (c *Client) SplitLot(lotID string, subs []SubLotRequest) (*SplitResponse, error) {
	body := map[string][]SubLotRequest{"sub_lots": subs}
	var result SplitResponse
	err := c.post("/api/v1/lots/"+lotID+"/split", body, &result)
	return &result, err
}

// MoveLot перемещает партию.
func (c *Client) MoveLot(lotID string, req MoveRequest) (*MoveResponse, error) {
	var result MoveResponse
	err := c.post("/api/v1/lots/"+lotID+"/move", req, &result)
	return &result, err
}

// LotsInWorkshop возвращает незавершённые партии в цехе.
func (c *Client) LotsInWorkshop(workshopID string) ([]LotResponse, error) {
	var lots []LotResponse
	err := c.list("/api/v1/workshops/"+workshopID+"/lots", nil, &lots)
	return lots, err
}

// --- Products ---

// CreateProduct создаёт продукт из JSON-описания.
func (c *Client) CreateProduct(spec json.RawMessage) (*ProductResponse, error) {
	var product ProductResponse
	err := c.post("/api/v1/products", spec, &product)
	return &product, err
}

// UpdateProduct обновляет продукт из JSON-описания.
func (c *Client) UpdateProduct(id string, spec json.RawMessage) (*ProductResponse, error) {
	var product ProductResponse
	err := c.put("/api/v1/products/"+id, spec, &product)
	return &product, err
}

// GetProduct возвращает продукт с шаблоном.
func (c *Client) GetProduct(id string) (*ProductResponse, error) {
	var product ProductResponse
	err := c.get("/api/v1/products/"+id, &product)
	return &product, err
}

// --- Reports ---

// DailyReport возвращает сводку за день (YYYY-MM-DD). Пустая дата - сегодня.
func (c *Client) DailyReport(date string) (*DailySummaryResponse, error) {
	path := "/api/v1/reports/daily"
	if date != "" {
		path += "?" + url.Values{"date": {date}}.Encode()
	}

	var summary DailySummaryResponse
	err := c.get(path, &summary)
	return &summary, err
}

// CreateRecord сохраняет ручную запись журнала.
func (c *Client) CreateRecord(req RecordRequest) (*RecordResponse, error) {
	var record RecordResponse
	err := c.post("/api/v1/records", req, &record)
	return &record, err
}

// --- Dashboard ---

// SearchOrders ищет заказы по подстроке имени клиента.
func (c *Client) SearchOrders(client string) ([]OrderResponse, error) {
	var orders []OrderResponse
	err := c.list("/api/v1/orders", url.Values{"client": {client}}, &orders)
	return orders, err
}

// OrderDashboard возвращает сводку незавершённых заказов.
func (c *Client) OrderDashboard(f DashboardFilter) ([]OrderSummaryResponse, error) {
	params := url.Values{}
	for key, value := range map[string]string{
		"client": f.Client,
		"from":   f.From,
		"to":     f.To,
		"status": f.Status,
	} {
		if value != "" {
			params.Set(key, value)
		}
	}

	var rows []OrderSummaryResponse
	err := c.list("/api/v1/dashboard/orders", params, &rows)
	return rows, err
}

// WorkshopDashboard возвращает загрузку цехов.
func (c *Client) WorkshopDashboard() ([]WorkshopLoadResponse, error) {
	var loads []WorkshopLoadResponse
	err := c.list("/api/v1/dashboard/workshops", nil, &loads)
	return loads, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.decodeList(resp, result)
}

func (c *Client) decodeList(resp *http.Response, result any) error {
	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
