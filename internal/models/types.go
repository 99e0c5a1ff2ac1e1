package models

type OrderType int
type PositionType int
type TradeAction int
type OrderState int
type Status string

const (
	OrderTypeBuy           OrderType = 0
	OrderTypeSell          OrderType = 1
	OrderTypeBuyLimit      OrderType = 2
	OrderTypeSellLimit     OrderType = 3
	OrderTypeBuyStop       OrderType = 4
	OrderTypeSellStop      OrderType = 5
	OrderTypeBuyStopLimit  OrderType = 6
	OrderTypeSellStopLimit OrderType = 7

	PositionTypeBuy  PositionType = 0
	PositionTypeSell PositionType = 1

	TradeActionDeal    TradeAction = 1
	TradeActionPending TradeAction = 5
	TradeActionSLTP    TradeAction = 6
	TradeActionModify  TradeAction = 7
	TradeActionRemove  TradeAction = 8

	OrderStateStarted  OrderState = 0
	OrderStatePlaced   OrderState = 1
	OrderStateCanceled OrderState = 2
	OrderStatePartial  OrderState = 3
	OrderStateFilled   OrderState = 4
	OrderStateRejected OrderState = 5
	OrderStateExpired  OrderState = 6

	TradeRetcodeDone = 10009

	OrderTimeGTC    = 0
	OrderFillingIOC = 1

	StatusActive    Status = "ACTIVE"
	StatusPending   Status = "PENDING"
	StatusFilled    Status = "FILLED"
	StatusCancelled Status = "CANCELLED"
	StatusRejected  Status = "REJECTED"
	StatusExpired   Status = "EXPIRED"
	StatusUnknown   Status = "UNKNOWN"
	StatusClosed    Status = "CLOSED"
	StatusNotFound  Status = "NOT_FOUND"
)

var orderTypeNames = map[string]OrderType{
	"ORDER_TYPE_BUY":             OrderTypeBuy,
	"ORDER_TYPE_SELL":            OrderTypeSell,
	"ORDER_TYPE_BUY_LIMIT":       OrderTypeBuyLimit,
	"ORDER_TYPE_SELL_LIMIT":      OrderTypeSellLimit,
	"ORDER_TYPE_BUY_STOP":        OrderTypeBuyStop,
	"ORDER_TYPE_SELL_STOP":       OrderTypeSellStop,
	"ORDER_TYPE_BUY_STOP_LIMIT":  OrderTypeBuyStopLimit,
	"ORDER_TYPE_SELL_STOP_LIMIT": OrderTypeSellStopLimit,
}

func ParseOrderType(name string) (OrderType, bool) {
	t, ok := orderTypeNames[name]
	return t, ok
}

func (t OrderType) IsMarket() bool {
	return t == OrderTypeBuy || t == OrderTypeSell
}

// ClosingOrderType возвращает тип ордера, которым гасится открытая позиция.
func (t PositionType) ClosingOrderType() OrderType {
	if t == PositionTypeBuy {
		return OrderTypeSell
	}
	return OrderTypeBuy
}

// StatusFromOrderState переводит терминальное состояние исторического ордера
// в метку статуса для клиента.
func StatusFromOrderState(state OrderState) Status {
	switch state {
	case OrderStateFilled:
		return StatusFilled
	case OrderStateCanceled:
		return StatusCancelled
	case OrderStateRejected:
		return StatusRejected
	case OrderStateExpired:
		return StatusExpired
	default:
		return StatusUnknown
	}
}

type Tick struct {
	Time       int64   `json:"time"`
	Bid        float64 `json:"bid"`
	Ask        float64 `json:"ask"`
	Last       float64 `json:"last"`
	Volume     int64   `json:"volume"`
	TimeMsc    int64   `json:"time_msc"`
	Flags      int     `json:"flags"`
	VolumeReal float64 `json:"volume_real"`
}

type Bar struct {
	Time       int64   `json:"time"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	TickVolume int64   `json:"tick_volume"`
	Spread     int     `json:"spread"`
	RealVolume int64   `json:"real_volume"`
}

type Position struct {
	Ticket       int64        `json:"ticket"`
	Time         int64        `json:"time"`
	Type         PositionType `json:"type"`
	Magic        int64        `json:"magic"`
	Symbol       string       `json:"symbol"`
	Volume       float64      `json:"volume"`
	PriceOpen    float64      `json:"price_open"`
	SL           float64      `json:"sl"`
	TP           float64      `json:"tp"`
	PriceCurrent float64      `json:"price_current"`
	Swap         float64      `json:"swap"`
	Profit       float64      `json:"profit"`
	Comment      string       `json:"comment"`
	ExternalID   string       `json:"external_id"`
}

type PendingOrder struct {
	Ticket        int64      `json:"ticket"`
	TimeSetup     int64      `json:"time_setup"`
	Type          OrderType  `json:"type"`
	State         OrderState `json:"state"`
	Magic         int64      `json:"magic"`
	Symbol        string     `json:"symbol"`
	VolumeInitial float64    `json:"volume_initial"`
	PriceOpen     float64    `json:"price_open"`
	SL            float64    `json:"sl"`
	TP            float64    `json:"tp"`
	PriceCurrent  float64    `json:"price_current"`
	Comment       string     `json:"comment"`
}

type HistoricalOrder struct {
	Ticket        int64      `json:"ticket"`
	TimeSetup     int64      `json:"time_setup"`
	TimeDone      int64      `json:"time_done"`
	Type          OrderType  `json:"type"`
	State         OrderState `json:"state"`
	Magic         int64      `json:"magic"`
	Symbol        string     `json:"symbol"`
	VolumeInitial float64    `json:"volume_initial"`
	PriceOpen     float64    `json:"price_open"`
	SL            float64    `json:"sl"`
	TP            float64    `json:"tp"`
	Comment       string     `json:"comment"`
}

type HistoricalDeal struct {
	Ticket     int64   `json:"ticket"`
	Order      int64   `json:"order"`
	Time       int64   `json:"time"`
	Type       int     `json:"type"`
	Entry      int     `json:"entry"`
	Magic      int64   `json:"magic"`
	PositionID int64   `json:"position_id"`
	Symbol     string  `json:"symbol"`
	Volume     float64 `json:"volume"`
	Price      float64 `json:"price"`
	Commission float64 `json:"commission"`
	Swap       float64 `json:"swap"`
	Profit     float64 `json:"profit"`
	Comment    string  `json:"comment"`
}

type TradeRequest struct {
	Action      TradeAction `json:"action"`
	Symbol      string      `json:"symbol,omitempty"`
	Volume      float64     `json:"volume,omitempty"`
	Type        OrderType   `json:"type"`
	Price       float64     `json:"price,omitempty"`
	SL          float64     `json:"sl,omitempty"`
	TP          float64     `json:"tp,omitempty"`
	Deviation   int         `json:"deviation,omitempty"`
	Magic       int64       `json:"magic,omitempty"`
	Order       int64       `json:"order,omitempty"`
	Position    int64       `json:"position,omitempty"`
	Comment     string      `json:"comment,omitempty"`
	TypeTime    int         `json:"type_time"`
	TypeFilling int         `json:"type_filling"`
}

type TradeResult struct {
	Retcode         int     `json:"retcode"`
	Deal            int64   `json:"deal"`
	Order           int64   `json:"order"`
	Volume          float64 `json:"volume"`
	Price           float64 `json:"price"`
	Bid             float64 `json:"bid"`
	Ask             float64 `json:"ask"`
	Comment         string  `json:"comment"`
	RequestID       int64   `json:"request_id"`
	RetcodeExternal int     `json:"retcode_external"`
}

type TerminalError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
