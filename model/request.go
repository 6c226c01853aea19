package model

import "time"

type RequestStatus string

const (
	StatusWaiting  RequestStatus = "WAITING"
	StatusApproved RequestStatus = "APPROVED"
	StatusRejected RequestStatus = "REJECTED"
)

// BorrowRequest is the persisted borrowing request row. The books on a
// request live in request_books, one row per book, each carrying a
// returned flag (recorded only; nothing in the API flips it yet).
type BorrowRequest struct {
	ID            int64         `json:"id"`
	DateRequested time.Time     `json:"date_requested"`
	Status        RequestStatus `json:"status"`
	RequestorID   int64         `json:"requestor_id"`
	ApproverID    *int64        `json:"approver_id,omitempty"`
}

// CreateRequestReq lists the books the user wants to borrow. Emptiness
// and duplicate handling are business rules, checked by the service,
// so the slice carries no validate tag.
type CreateRequestReq struct {
	BookIDs []int64 `json:"book_ids"`
}

// RequestView is the read projection: request joined with requestor,
// approver (absent until approval) and per-book detail.
type RequestView struct {
	ID            int64         `json:"id"`
	DateRequested time.Time     `json:"date_requested"`
	Status        RequestStatus `json:"status"`
	RequestorID   int64         `json:"-"`
	Requestor     RequestUser   `json:"requestor"`
	Approver      *RequestUser  `json:"approver,omitempty"`
	Books         []RequestBook `json:"books"`
}

type RequestUser struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type RequestBook struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Returned bool   `json:"returned"`
}

// Allowance reports how many borrowing requests a user has left this
// calendar month.
type Allowance struct {
	RequestsAvailable int64 `json:"requests_available"`
	RequestLimit      int64 `json:"request_limit"`
}
