package server

// Server объединяет специфичные HTTP сервера, отвечающие за обработку
// конкретных сущностей: scanner, dashboard, deals и websocket-фид.
type Server struct {
	ScannerServer
	DashboardServer
	DealServer
	StreamServer
}

func NewServer(
	scannerServer ScannerServer,
	dashboardServer DashboardServer,
	dealServer DealServer,
	streamServer StreamServer,
) Server {
	return Server{
		ScannerServer:   scannerServer,
		DashboardServer: dashboardServer,
		DealServer:      dealServer,
		StreamServer:    streamServer,
	}
}
