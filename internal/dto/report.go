package dto

import (
	"github.com/SscSPs/gst_return_app/internal/core/domain"
	"github.com/SscSPs/gst_return_app/internal/utils/accounting"
)

// SummaryItemResponse is one category line of a summary, amounts rounded to cents.
type SummaryItemResponse struct {
	Category string `json:"category"`
	Total    string `json:"total"`
	GST      string `json:"gst"`
	GSTRatio string `json:"gstRatio"`
	Count    int    `json:"count"`
}

// SummaryResponse is the sales or expenses side of a report.
type SummaryResponse struct {
	Total string                `json:"total"`
	GST   string                `json:"gst"`
	Items []SummaryItemResponse `json:"items"`
}

// RatioWarningResponse flags a category whose transactions carry different claim ratios.
type RatioWarningResponse struct {
	Category string   `json:"category"`
	Ratios   []string `json:"ratios"`
}

// ReportResponse defines the data returned for a GST report.
type ReportResponse struct {
	Sales       SummaryResponse        `json:"sales"`
	Expenses    SummaryResponse        `json:"expenses"`
	Journal     []domain.JournalRow    `json:"journal"`
	TotalDebit  string                 `json:"totalDebit"`
	TotalCredit string                 `json:"totalCredit"`
	GSTToPay    string                 `json:"gstToPay"`
	Excluded    []string               `json:"excluded"`
	Warnings    []RatioWarningResponse `json:"warnings"`
}

// JournalFile is a rendered journal download.
type JournalFile struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ToReportResponse converts a domain.Report to ReportResponse DTO.
func ToReportResponse(r *domain.Report) ReportResponse {
	res := ReportResponse{
		Sales:       toSummaryResponse(r.Sales),
		Expenses:    toSummaryResponse(r.Expenses),
		Journal:     r.Journal,
		TotalDebit:  accounting.FormatMoney(r.TotalDebit),
		TotalCredit: accounting.FormatMoney(r.TotalCredit),
		GSTToPay:    accounting.FormatMoney(r.GSTToPay),
		Excluded:    r.Excluded,
		Warnings:    make([]RatioWarningResponse, len(r.Warnings)),
	}
	if res.Excluded == nil {
		res.Excluded = []string{}
	}
	for i, w := range r.Warnings {
		ratios := make([]string, len(w.Ratios))
		for j, ratio := range w.Ratios {
			ratios[j] = ratio.String()
		}
		res.Warnings[i] = RatioWarningResponse{Category: w.Category, Ratios: ratios}
	}
	return res
}

func toSummaryResponse(s domain.Summary) SummaryResponse {
	items := make([]SummaryItemResponse, len(s.Items))
	for i, it := range s.Items {
		items[i] = SummaryItemResponse{
			Category: it.Category,
			Total:    accounting.FormatMoney(it.Total),
			GST:      accounting.FormatMoney(it.GST),
			GSTRatio: it.GSTRatio.String(),
			Count:    it.Count,
		}
	}
	return SummaryResponse{
		Total: accounting.FormatMoney(s.Total),
		GST:   accounting.FormatMoney(s.GST),
		Items: items,
	}
}
