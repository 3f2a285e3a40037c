package rpcjson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/khanakhazana/foodlog/internal/application"
	"github.com/khanakhazana/foodlog/internal/domain"
)

const sessionTTL = 12 * time.Hour

type Server struct {
	service  *application.FoodLogService
	listener net.Listener
	path     string
}

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      any             `json:"id"`
}

type response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  any         `json:"result,omitempty"`
	Error   *rpcError   `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func Start(path string, service *application.FoodLogService) (*Server, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("rpc socket path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = ln.Close()
		_ = os.Remove(path)
		return nil, err
	}

	s := &Server{service: service, listener: ln, path: path}
	go s.serve()
	return s, nil
}

func (s *Server) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

func (s *Server) Close() error {
	err := s.listener.Close()
	_ = os.Remove(s.path)
	return err
}

func (s *Server) handleConn(conn net.Conn) {
	defer func() { _ = conn.Close() }()
	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	for {
		var req request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			_ = enc.Encode(response{JSONRPC: "2.0", Error: &rpcError{Code: -32700, Message: "parse error"}, ID: nil})
			return
		}

		resp := s.dispatch(context.Background(), req)
		if err := enc.Encode(resp); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, req request) response {
	if req.JSONRPC != "2.0" || strings.TrimSpace(req.Method) == "" {
		return response{JSONRPC: "2.0", Error: &rpcError{Code: -32600, Message: "invalid request"}, ID: req.ID}
	}

	switch req.Method {
	case "auth.unlock":
		return s.handleAuthUnlock(ctx, req)
	case "auth.lock":
		var p struct {
			Token string `json:"token"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		if err := s.service.Lock(ctx, p.Token); err != nil {
			return internalError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: map[string]any{"ok": true}, ID: req.ID}
	case "foods.list":
		if rpcResp, ok := s.authz(ctx, req); !ok {
			return rpcResp
		}
		var p struct {
			Token string `json:"token"`
			Basis string `json:"basis"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		basis, err := application.ParseBasis(p.Basis)
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: s.service.ListFoods(basis), ID: req.ID}
	case "foods.search":
		if rpcResp, ok := s.authz(ctx, req); !ok {
			return rpcResp
		}
		var p struct {
			Token string `json:"token"`
			Q     string `json:"q"`
			Basis string `json:"basis"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		basis, err := application.ParseBasis(p.Basis)
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: s.service.SearchFoods(p.Q, basis), ID: req.ID}
	case "log.preview":
		if rpcResp, ok := s.authz(ctx, req); !ok {
			return rpcResp
		}
		p, resp, ok := decodeScaleParams(req)
		if !ok {
			return resp
		}
		basis, err := application.ParseBasis(p.Basis)
		if err != nil {
			return appError(req.ID, err)
		}
		vec, err := s.service.Scale(ctx, p.Dish, basis, p.Quantity)
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: vec.Rounded(), ID: req.ID}
	case "log.append":
		if rpcResp, ok := s.authz(ctx, req); !ok {
			return rpcResp
		}
		p, resp, ok := decodeScaleParams(req)
		if !ok {
			return resp
		}
		basis, err := application.ParseBasis(p.Basis)
		if err != nil {
			return appError(req.ID, err)
		}
		entry, err := s.service.Commit(ctx, p.Date, p.Dish, basis, p.Quantity)
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: entry, ID: req.ID}
	case "log.creatine":
		if rpcResp, ok := s.authz(ctx, req); !ok {
			return rpcResp
		}
		var p struct {
			Token string  `json:"token"`
			Grams float64 `json:"grams"`
			Date  string  `json:"date"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		entry, err := s.service.CommitCreatine(ctx, p.Date, p.Grams)
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: entry, ID: req.ID}
	case "log.today":
		if rpcResp, ok := s.authz(ctx, req); !ok {
			return rpcResp
		}
		entries, totals, err := s.service.TodayLog(ctx)
		if err != nil {
			return internalError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: map[string]any{
			"date":    domain.Today(),
			"entries": entries,
			"totals":  totals.Rounded(),
		}, ID: req.ID}
	case "log.last":
		if rpcResp, ok := s.authz(ctx, req); !ok {
			return rpcResp
		}
		var p struct {
			Token string `json:"token"`
			Days  int    `json:"days"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		entries, days, err := s.service.LastDaysLog(ctx, p.Days)
		if err != nil {
			return internalError(req.ID, err)
		}
		for i := range days {
			days[i].Totals = days[i].Totals.Rounded()
		}
		return response{JSONRPC: "2.0", Result: map[string]any{"entries": entries, "days": days}, ID: req.ID}
	case "log.month":
		if rpcResp, ok := s.authz(ctx, req); !ok {
			return rpcResp
		}
		var p struct {
			Token string `json:"token"`
			Year  int    `json:"year"`
			Month int    `json:"month"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		cells, err := s.service.MonthReport(ctx, p.Year, time.Month(p.Month))
		if err != nil {
			return appError(req.ID, err)
		}
		for i := range cells {
			cells[i].Totals = cells[i].Totals.Rounded()
		}
		return response{JSONRPC: "2.0", Result: cells, ID: req.ID}
	case "log.clear_day":
		if rpcResp, ok := s.authz(ctx, req); !ok {
			return rpcResp
		}
		var p struct {
			Token string `json:"token"`
			Date  string `json:"date"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		if err := s.service.ClearDay(ctx, p.Date); err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: map[string]any{"ok": true}, ID: req.ID}
	case "log.delete":
		if rpcResp, ok := s.authz(ctx, req); !ok {
			return rpcResp
		}
		var p struct {
			Token string `json:"token"`
			ID    uint   `json:"id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		if err := s.service.DeleteEntry(ctx, p.ID); err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: map[string]any{"ok": true}, ID: req.ID}
	case "override.get":
		if rpcResp, ok := s.authz(ctx, req); !ok {
			return rpcResp
		}
		var p struct {
			Token string `json:"token"`
			Dish  string `json:"dish"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		override, found, err := s.service.GetOverride(ctx, p.Dish)
		if err != nil {
			return internalError(req.ID, err)
		}
		if !found {
			return appError(req.ID, fmt.Errorf("no override for %q", p.Dish))
		}
		return response{JSONRPC: "2.0", Result: override, ID: req.ID}
	case "override.save":
		if rpcResp, ok := s.authz(ctx, req); !ok {
			return rpcResp
		}
		var p struct {
			Token  string                `json:"token"`
			Dish   string                `json:"dish"`
			Values domain.OverrideVector `json:"values"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		override, err := s.service.SaveOverride(ctx, p.Dish, p.Values)
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: override, ID: req.ID}
	default:
		return response{JSONRPC: "2.0", Error: &rpcError{Code: -32601, Message: "method not found"}, ID: req.ID}
	}
}

func (s *Server) handleAuthUnlock(ctx context.Context, req request) response {
	var p struct {
		Secret string `json:"secret"`
	}
	if !decodeParams(req.Params, &p) {
		return invalidParams(req.ID)
	}
	token, err := s.service.Unlock(ctx, p.Secret, sessionTTL)
	if err != nil {
		return response{JSONRPC: "2.0", Error: &rpcError{Code: 40100, Message: "invalid secret"}, ID: req.ID}
	}
	return response{JSONRPC: "2.0", Result: map[string]any{"token": token}, ID: req.ID}
}

func (s *Server) authz(ctx context.Context, req request) (response, bool) {
	var p struct {
		Token string `json:"token"`
	}
	if !decodeParams(req.Params, &p) {
		return invalidParams(req.ID), false
	}
	if err := s.service.Authenticate(ctx, p.Token); err != nil {
		return response{JSONRPC: "2.0", Error: &rpcError{Code: 40100, Message: "unauthorized"}, ID: req.ID}, false
	}
	return response{}, true
}

type scaleParams struct {
	Token    string  `json:"token"`
	Dish     string  `json:"dish"`
	Basis    string  `json:"basis"`
	Quantity float64 `json:"quantity"`
	Date     string  `json:"date"`
}

func decodeScaleParams(req request) (scaleParams, response, bool) {
	var p scaleParams
	if !decodeParams(req.Params, &p) {
		return scaleParams{}, invalidParams(req.ID), false
	}
	return p, response{}, true
}

func decodeParams(raw json.RawMessage, out any) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func invalidParams(id any) response {
	return response{JSONRPC: "2.0", Error: &rpcError{Code: -32602, Message: "invalid params"}, ID: id}
}

func appError(id any, err error) response {
	return response{JSONRPC: "2.0", Error: &rpcError{Code: 40000, Message: err.Error()}, ID: id}
}

func internalError(id any, err error) response {
	return response{JSONRPC: "2.0", Error: &rpcError{Code: 50000, Message: fmt.Sprintf("internal error: %v", err)}, ID: id}
}
