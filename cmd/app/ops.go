package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/khanakhazana/foodlog/internal/domain"
)

type dayLogView struct {
	Date    string                `json:"date"`
	Entries []domain.LogEntry     `json:"entries"`
	Totals  domain.NutrientVector `json:"totals"`
}

type lastDaysView struct {
	Entries []domain.LogEntry  `json:"entries"`
	Days    []domain.DayTotals `json:"days"`
}

func doUnlock(ctx context.Context, cfg cliConfig, secret string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "auth.unlock", map[string]any{"secret": secret}, out)
	}
	client := newAPIClient(cfg.Server, "")
	return client.request(ctx, http.MethodPost, "/unlock", map[string]any{"secret": secret}, out)
}

func doLock(ctx context.Context, cfg cliConfig) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "auth.lock", map[string]any{"token": cfg.Token}, nil)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/lock", nil, nil)
}

func doFoodsList(ctx context.Context, cfg cliConfig, basis string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "foods.list", map[string]any{"token": cfg.Token, "basis": basis}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/foods?basis="+url.QueryEscape(basis), nil, out)
}

func doFoodsSearch(ctx context.Context, cfg cliConfig, q, basis string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "foods.search", map[string]any{"token": cfg.Token, "q": q, "basis": basis}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/foods/search?q="+url.QueryEscape(q)+"&basis="+url.QueryEscape(basis), nil, out)
}

func doLogPreview(ctx context.Context, cfg cliConfig, dish, basis string, quantity float64, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "log.preview", map[string]any{"token": cfg.Token, "dish": dish, "basis": basis, "quantity": quantity}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/preview", map[string]any{"dish": dish, "basis": basis, "quantity": quantity}, out)
}

func doLogAppend(ctx context.Context, cfg cliConfig, dish, basis string, quantity float64, date string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "log.append", map[string]any{"token": cfg.Token, "dish": dish, "basis": basis, "quantity": quantity, "date": date}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/log", map[string]any{"dish": dish, "basis": basis, "quantity": quantity, "date": date}, out)
}

func doLogCreatine(ctx context.Context, cfg cliConfig, grams float64, date string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "log.creatine", map[string]any{"token": cfg.Token, "grams": grams, "date": date}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/log/creatine", map[string]any{"grams": grams, "date": date}, out)
}

func doLogToday(ctx context.Context, cfg cliConfig, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "log.today", map[string]any{"token": cfg.Token}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/log/today", nil, out)
}

func doLogLast(ctx context.Context, cfg cliConfig, days int, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "log.last", map[string]any{"token": cfg.Token, "days": days}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, fmt.Sprintf("/api/log/last?days=%d", days), nil, out)
}

func doLogMonth(ctx context.Context, cfg cliConfig, year, month int, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "log.month", map[string]any{"token": cfg.Token, "year": year, "month": month}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, fmt.Sprintf("/api/log/month?year=%d&month=%d", year, month), nil, out)
}

func doLogClearDay(ctx context.Context, cfg cliConfig, date string) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "log.clear_day", map[string]any{"token": cfg.Token, "date": date}, nil)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodDelete, "/api/log/date/"+url.PathEscape(date), nil, nil)
}

func doLogDelete(ctx context.Context, cfg cliConfig, id uint) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "log.delete", map[string]any{"token": cfg.Token, "id": id}, nil)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodDelete, fmt.Sprintf("/api/log/%d", id), nil, nil)
}

func doOverrideGet(ctx context.Context, cfg cliConfig, dish string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "override.get", map[string]any{"token": cfg.Token, "dish": dish}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/overrides/"+url.PathEscape(dish), nil, out)
}

func doOverrideSave(ctx context.Context, cfg cliConfig, dish string, values domain.OverrideVector, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket)
		return client.call(ctx, "override.save", map[string]any{"token": cfg.Token, "dish": dish, "values": values}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPut, "/api/overrides/"+url.PathEscape(dish), values, out)
}
