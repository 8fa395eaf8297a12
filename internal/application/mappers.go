package application

import (
	"github.com/retail-platform/order-fulfillment/internal/domain"
)

// ToOrderDTO converts a domain Order to OrderDTO
func ToOrderDTO(order *domain.Order) *OrderDTO {
	if order == nil {
		return nil
	}

	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
			Size:      item.Size,
			Color:     item.Color,
		})
	}

	return &OrderDTO{
		OrderID:       order.OrderID,
		CustomerID:    order.CustomerID,
		CustomerEmail: order.CustomerEmail,
		Items:         items,
		DeliveryAddress: AddressDTO{
			Street:        order.DeliveryAddress.Street,
			City:          order.DeliveryAddress.City,
			State:         order.DeliveryAddress.State,
			ZipCode:       order.DeliveryAddress.ZipCode,
			Country:       order.DeliveryAddress.Country,
			RecipientName: order.DeliveryAddress.RecipientName,
		},
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount,
		Payment:     toPaymentDTO(order.Payment),
		Invoice:     toInvoiceDTO(order.Invoice),
		Tracker:     toTrackerDTO(order.Tracker),
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}

func toPaymentDTO(payment *domain.Payment) *PaymentDTO {
	if payment == nil {
		return nil
	}

	return &PaymentDTO{
		PaymentID:     payment.PaymentID,
		Amount:        payment.Amount,
		Status:        string(payment.Status),
		MethodKind:    string(payment.MethodKind),
		TransactionID: payment.TransactionID,
		CreatedAt:     payment.CreatedAt,
		ProcessedAt:   payment.ProcessedAt,
	}
}

func toInvoiceDTO(invoice *domain.Invoice) *InvoiceDTO {
	if invoice == nil {
		return nil
	}

	return &InvoiceDTO{
		InvoiceID:       invoice.InvoiceID,
		OrderID:         invoice.OrderID,
		Amount:          invoice.Amount,
		Tax:             invoice.Tax,
		ShippingCharges: invoice.ShippingCharges,
		Discount:        invoice.Discount,
		FinalAmount:     invoice.FinalAmount,
		DocumentURL:     invoice.DocumentURL,
		IssuedAt:        invoice.IssuedAt,
	}
}

func toTrackerDTO(tracker *domain.ShipmentTracker) *TrackerDTO {
	if tracker == nil {
		return nil
	}

	history := make([]TrackingEventDTO, 0, len(tracker.History))
	for _, event := range tracker.History {
		history = append(history, TrackingEventDTO{
			Status:      string(event.Status),
			Description: event.Description,
			Timestamp:   event.Timestamp,
		})
	}

	return &TrackerDTO{
		TrackerID:        tracker.TrackerID,
		TrackingNumber:   tracker.TrackingNumber,
		Current:          string(tracker.Current),
		History:          history,
		ExpectedDelivery: tracker.ExpectedDelivery,
	}
}

// ToOrderListDTO converts a domain Order to OrderListDTO (simplified)
func ToOrderListDTO(order *domain.Order) *OrderListDTO {
	if order == nil {
		return nil
	}

	totalItems := 0
	for _, item := range order.Items {
		totalItems += item.Quantity
	}

	return &OrderListDTO{
		OrderID:     order.OrderID,
		CustomerID:  order.CustomerID,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount,
		TotalItems:  totalItems,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}

// ToOrderListDTOs converts a slice of domain Orders to OrderListDTOs
func ToOrderListDTOs(orders []*domain.Order) []OrderListDTO {
	dtos := make([]OrderListDTO, 0, len(orders))
	for _, order := range orders {
		if dto := ToOrderListDTO(order); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}
