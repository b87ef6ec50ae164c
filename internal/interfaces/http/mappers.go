package http

import (
	"github.com/jhoicas/estoque-cd/internal/application/dto"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
)

func toOrderResponse(v entity.OrderView) dto.OrderResponse {
	return dto.OrderResponse{
		ID:                v.ID,
		Store:             v.Store,
		ProductID:         v.ProductID,
		EAN:               v.EAN,
		Reference:         v.Reference,
		ProductName:       v.ProductName,
		RequestedQuantity: v.RequestedQuantity,
		DeliveredQuantity: v.DeliveredQuantity,
		PendingQuantity:   v.Pending(),
		RequestedBy:       v.RequestedBy,
		Notes:             v.Notes,
		Status:            string(v.Status),
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
	}
}

func toOrderResponses(views []entity.OrderView) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toOrderResponse(v))
	}
	return out
}

func toFulfillmentResponse(f *entity.Fulfillment) dto.FulfillmentResponse {
	return dto.FulfillmentResponse{
		ID:                f.ID,
		OrderID:           f.OrderID,
		FulfilledQuantity: f.FulfilledQuantity,
		FulfilledBy:       f.FulfilledBy,
		Notes:             f.Notes,
		CreatedAt:         f.CreatedAt,
	}
}

func toProductStockResponses(items []entity.ProductStock) []dto.ProductStockResponse {
	out := make([]dto.ProductStockResponse, 0, len(items))
	for _, p := range items {
		out = append(out, dto.ProductStockResponse{
			ProductID:   p.ProductID,
			EAN:         p.EAN,
			Reference:   p.Reference,
			Name:        p.Name,
			Sector:      p.Sector,
			Quantity:    p.Quantity,
			LastUpdated: p.LastUpdated,
		})
	}
	return out
}
