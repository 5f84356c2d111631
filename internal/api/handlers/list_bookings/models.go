package list_bookings

import (
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
)

// ToServiceRequest собирает фильтры из query параметров
// employeeId, clientId, serviceId, dateFrom, dateTo, status
func ToServiceRequest(r *http.Request) (*models.ListBookingsRequest, error) {
	employeeID, err := handlers.QueryInt64(r, "employeeId")
	if err != nil {
		return nil, err
	}
	clientID, err := handlers.QueryInt64(r, "clientId")
	if err != nil {
		return nil, err
	}
	serviceID, err := handlers.QueryInt64(r, "serviceId")
	if err != nil {
		return nil, err
	}

	return &models.ListBookingsRequest{
		EmployeeID: employeeID,
		ClientID:   clientID,
		ServiceID:  serviceID,
		DateFrom:   handlers.QueryString(r, "dateFrom"),
		DateTo:     handlers.QueryString(r, "dateTo"),
		Status:     handlers.QueryString(r, "status"),
	}, nil
}
