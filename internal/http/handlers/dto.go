package handlers

import "github.com/rogerio-castellano/pixel-canvas/internal/grid"

type UpdateCanvasRequest struct {
	GridData grid.Grid `json:"gridData" swaggertype:"array,object"`
}

type UpdateCanvasResult struct {
	Success bool `json:"success"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
