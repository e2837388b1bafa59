package receipt

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/KushKG/receipt-splitter/internal/scanning"
)

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// jsonError writes a JSON error body with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// extractionResponse is the wire shape of one completed extraction
type extractionResponse struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Items  []Item `json:"items"`
	Method Method `json:"method"`
}

// handleProcessReceipt handles a receipt image upload and runs the
// extraction pipeline on it
func (s *Server) handleProcessReceipt(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(DefaultMaxUploadBytes); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		if err.Error() == "http: request body too large" {
			errorMsg = "File size must be less than 20MB"
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("image")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		jsonError(w, "No image provided", http.StatusBadRequest)
		return
	}
	defer f.Close()

	// Authoritative size check; client-side limits are advisory only
	if header.Size > DefaultMaxUploadBytes {
		jsonError(w, "File size must be less than 20MB", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	// Determine content type, falling back to the file extension
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		ext := strings.ToLower(filepath.Ext(header.Filename))
		contentType = uploadExtensions[ext]
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))

	record, err := s.service.ProcessReceipt(r.Context(), header.Filename, data, contentType)
	if err != nil {
		switch KindOf(err) {
		case KindInvalidInput, KindMalformedPayload, KindNoItemsFound:
			jsonError(w, UserMessage(err, "Failed to process receipt. Please try again."), http.StatusBadRequest)
		default:
			slog.Error("Error processing receipt", "filename", header.Filename, "error", err)
			jsonError(w, "Failed to process receipt. Please try again.", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(extractionResponse{
		ID:     record.ID,
		Text:   record.Text,
		Items:  record.Items,
		Method: record.Method,
	}); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleElaborateItem explains an ambiguous item name. Always succeeds once
// the request itself is well-formed.
func (s *Server) handleElaborateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemName    string  `json:"itemName"`
		ItemPrice   float64 `json:"itemPrice"`
		ReceiptText string  `json:"receiptText"`
		StoreName   string  `json:"storeName"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.ItemName == "" {
		jsonError(w, "Item name is required.", http.StatusBadRequest)
		return
	}

	elaboration := s.service.ElaborateItem(r.Context(), scanning.Elaboration{
		ItemName:    req.ItemName,
		ItemPrice:   req.ItemPrice,
		ReceiptText: req.ReceiptText,
		StoreName:   req.StoreName,
	})

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"elaboration": elaboration,
	}); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleSplit computes per-person totals for an assigned item list
func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items  []Item   `json:"items"`
		People []Person `json:"people"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.People) == 0 {
		jsonError(w, "At least one person is required", http.StatusBadRequest)
		return
	}

	results := CalculateSplit(req.Items, req.People)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string][]SplitResult{
		"results": results,
	}); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleListRecords returns all stored extractions
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.ListRecords()
	if err != nil {
		slog.Error("Error listing records", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(records); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleGetRecord returns a single stored extraction
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Record ID required", http.StatusBadRequest)
		return
	}
	record, err := s.service.GetRecord(id)
	if err != nil {
		corsError(w, "Record not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(record); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleGetRecordFile returns the original uploaded file for a record
func (s *Server) handleGetRecordFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Record ID required", http.StatusBadRequest)
		return
	}
	data, contentType, err := s.service.GetRecordFile(id)
	if err != nil {
		corsError(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleDeleteRecord deletes a stored extraction
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Record ID required", http.StatusBadRequest)
		return
	}
	if err := s.service.DeleteRecord(id); err != nil {
		corsError(w, "Error deleting record", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
