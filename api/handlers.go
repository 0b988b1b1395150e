/*
handlers.go - HTTP API handlers for the club membership system

PURPOSE:
  Exposes the membership engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Athletes:
    GET    /api/athletes                           List all athletes
    POST   /api/athletes                           Register athlete
    GET    /api/athletes/{id}                      Get athlete details
    PUT    /api/athletes/{id}                      Rename athlete
    DELETE /api/athletes/{id}                      Remove athlete
    POST   /api/athletes/{id}/payers               Link payer under role
    DELETE /api/athletes/{id}/payers/{payerID}/{role}  Unlink payer
    PUT    /api/athletes/{id}/memberships          Set monthly membership
    DELETE /api/athletes/{id}/memberships/{year}/{month}  Remove membership
    GET    /api/athletes/{id}/fee/{year}/{month}   Compute monthly fee

  Payers:
    GET/POST /api/payers, GET/PUT/DELETE /api/payers/{id}

  Periods:
    GET    /api/periods                    Fee schedule
    POST   /api/periods/missing            Create missing months in range
    POST   /api/periods/existing           Update fee across existing months
    GET    /api/periods/{year}/{month}/fees  Fee statement for one month

  Seeding:
    POST   /api/seed/athletes              Athlete + payers + memberships,
                                           one transaction

  Bank statements:
    POST   /api/bank/imports               Upload statement CSV (multipart)
    GET    /api/bank/imports               Import history
    GET    /api/bank/imports/{id}/details  Per-row audit of one import
    GET    /api/bank/transactions          Imported transactions

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Duplicate payer link
  - 500: Internal errors (no details leaked)

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rowclub/membership-engine/banking"
	"github.com/rowclub/membership-engine/club"
	"github.com/rowclub/membership-engine/membership"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers. It works against the
// store contracts, so tests can run it on the in-memory store.
type Handler struct {
	uow      club.UnitOfWork
	periods  *membership.PeriodService
	seeder   *membership.Seeder
	importer *banking.Importer
	imports  banking.ImportStore
	bankTxs  banking.TransactionStore
	log      *slog.Logger
}

// NewHandler wires the services onto one unit of work and the bank stores.
func NewHandler(uow club.UnitOfWork, bankTxs banking.TransactionStore, imports banking.ImportStore, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		uow:      uow,
		periods:  membership.NewPeriodService(uow, log),
		seeder:   membership.NewSeeder(uow, log),
		importer: banking.NewImporter(bankTxs, imports, log),
		imports:  imports,
		bankTxs:  bankTxs,
		log:      log,
	}
}

// =============================================================================
// ATHLETE HANDLERS
// =============================================================================

// ListAthletes returns all athletes.
func (h *Handler) ListAthletes(w http.ResponseWriter, r *http.Request) {
	var athletes []*club.Athlete
	err := h.uow.WithTx(r.Context(), func(stores club.Stores) error {
		var err error
		athletes, err = stores.Athletes.GetAll(r.Context())
		return err
	})
	if err != nil {
		writeDomainError(w, "failed to list athletes", err)
		return
	}

	dtos := make([]AthleteDTO, len(athletes))
	for i, a := range athletes {
		dtos[i] = toAthleteDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAthlete registers a new athlete. Full names must be unique.
func (h *Handler) CreateAthlete(w http.ResponseWriter, r *http.Request) {
	var req CreateAthleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	var athlete *club.Athlete
	err := h.uow.WithTx(r.Context(), func(stores club.Stores) error {
		unique, err := stores.Athletes.IsNameUnique(r.Context(), req.FirstName, req.SecondName, req.LastName)
		if err != nil {
			return err
		}
		if !unique {
			return &club.DomainError{Message: "an athlete with this name already exists"}
		}
		athlete, err = club.NewAthlete(req.FirstName, req.SecondName, req.LastName)
		if err != nil {
			return err
		}
		return stores.Athletes.Add(r.Context(), athlete)
	})
	if err != nil {
		writeDomainError(w, "failed to create athlete", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAthleteDTO(athlete))
}

// GetAthlete returns a single athlete with links and memberships.
func (h *Handler) GetAthlete(w http.ResponseWriter, r *http.Request) {
	id := club.AthleteID(chi.URLParam(r, "id"))

	var athlete *club.Athlete
	err := h.uow.WithTx(r.Context(), func(stores club.Stores) error {
		var err error
		athlete, err = stores.Athletes.GetByID(r.Context(), id)
		return err
	})
	if err != nil {
		writeDomainError(w, "failed to get athlete", err)
		return
	}
	writeJSON(w, http.StatusOK, toAthleteDTO(athlete))
}

// RenameAthlete updates the athlete's name.
func (h *Handler) RenameAthlete(w http.ResponseWriter, r *http.Request) {
	id := club.AthleteID(chi.URLParam(r, "id"))
	var req RenameAthleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	var athlete *club.Athlete
	err := h.uow.WithTx(r.Context(), func(stores club.Stores) error {
		var err error
		athlete, err = stores.Athletes.GetByID(r.Context(), id)
		if err != nil {
			return err
		}
		if err := athlete.Rename(req.FirstName, req.SecondName, req.LastName); err != nil {
			return err
		}
		return stores.Athletes.Update(r.Context(), athlete)
	})
	if err != nil {
		writeDomainError(w, "failed to rename athlete", err)
		return
	}
	writeJSON(w, http.StatusOK, toAthleteDTO(athlete))
}

// DeleteAthlete removes the athlete with its links and memberships.
func (h *Handler) DeleteAthlete(w http.ResponseWriter, r *http.Request) {
	id := club.AthleteID(chi.URLParam(r, "id"))
	err := h.uow.WithTx(r.Context(), func(stores club.Stores) error {
		if _, err := stores.Athletes.GetByID(r.Context(), id); err != nil {
			return err
		}
		return stores.Athletes.Delete(r.Context(), id)
	})
	if err != nil {
		writeDomainError(w, "failed to delete athlete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LinkPayer links an existing payer to the athlete under a role.
func (h *Handler) LinkPayer(w http.ResponseWriter, r *http.Request) {
	id := club.AthleteID(chi.URLParam(r, "id"))
	var req LinkPayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	role, err := club.ParsePayerType(req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payer role", err)
		return
	}

	var athlete *club.Athlete
	err = h.uow.WithTx(r.Context(), func(stores club.Stores) error {
		var err error
		athlete, err = stores.Athletes.GetByID(r.Context(), id)
		if err != nil {
			return err
		}
		payer, err := stores.Payers.GetByID(r.Context(), club.PayerID(req.PayerID))
		if err != nil {
			return err
		}
		if err := athlete.AddPayer(payer.ID, role); err != nil {
			return err
		}
		return stores.Athletes.Update(r.Context(), athlete)
	})
	if err != nil {
		writeDomainError(w, "failed to link payer", err)
		return
	}
	writeJSON(w, http.StatusOK, toAthleteDTO(athlete))
}

// UnlinkPayer removes one (payer, role) link from the athlete.
func (h *Handler) UnlinkPayer(w http.ResponseWriter, r *http.Request) {
	id := club.AthleteID(chi.URLParam(r, "id"))
	payerID := club.PayerID(chi.URLParam(r, "payerID"))
	role, err := club.ParsePayerType(chi.URLParam(r, "role"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payer role", err)
		return
	}

	err = h.uow.WithTx(r.Context(), func(stores club.Stores) error {
		athlete, err := stores.Athletes.GetByID(r.Context(), id)
		if err != nil {
			return err
		}
		athlete.RemovePayer(payerID, role)
		return stores.Athletes.Update(r.Context(), athlete)
	})
	if err != nil {
		writeDomainError(w, "failed to unlink payer", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetMembership upserts the athlete's membership record for one month.
// The referenced period must already exist in the fee schedule.
func (h *Handler) SetMembership(w http.ResponseWriter, r *http.Request) {
	id := club.AthleteID(chi.URLParam(r, "id"))
	var req SetMembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	var athlete *club.Athlete
	err := h.uow.WithTx(r.Context(), func(stores club.Stores) error {
		var err error
		athlete, err = stores.Athletes.GetByID(r.Context(), id)
		if err != nil {
			return err
		}
		if _, err := stores.Periods.GetByYearMonth(r.Context(), req.Year, req.Month); err != nil {
			return err
		}
		if err := athlete.SetMembership(req.Month, req.Year, req.Coefficient); err != nil {
			return err
		}
		return stores.Athletes.Update(r.Context(), athlete)
	})
	if err != nil {
		writeDomainError(w, "failed to set membership", err)
		return
	}
	writeJSON(w, http.StatusOK, toAthleteDTO(athlete))
}

// RemoveMembership deletes the athlete's record for one month.
func (h *Handler) RemoveMembership(w http.ResponseWriter, r *http.Request) {
	id := club.AthleteID(chi.URLParam(r, "id"))
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	err := h.uow.WithTx(r.Context(), func(stores club.Stores) error {
		athlete, err := stores.Athletes.GetByID(r.Context(), id)
		if err != nil {
			return err
		}
		athlete.RemoveMembership(month, year)
		return stores.Athletes.Update(r.Context(), athlete)
	})
	if err != nil {
		writeDomainError(w, "failed to remove membership", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetFee computes the athlete's fee for one month: base fee times the
// recorded participation coefficient, zero if not enrolled.
func (h *Handler) GetFee(w http.ResponseWriter, r *http.Request) {
	id := club.AthleteID(chi.URLParam(r, "id"))
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	var dto FeeDTO
	err := h.uow.WithTx(r.Context(), func(stores club.Stores) error {
		athlete, err := stores.Athletes.GetByID(r.Context(), id)
		if err != nil {
			return err
		}
		period, err := stores.Periods.GetByYearMonth(r.Context(), year, month)
		if err != nil {
			return err
		}
		coeff, _ := athlete.ParticipationCoefficient(period.Key())
		dto = FeeDTO{
			AthleteID:   string(athlete.ID),
			Year:        year,
			Month:       month,
			BaseFee:     period.BaseFee,
			Coefficient: coeff,
			Fee:         athlete.CalculateFee(period),
		}
		return nil
	})
	if err != nil {
		writeDomainError(w, "failed to compute fee", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// PAYER HANDLERS
// =============================================================================

// ListPayers returns all payers.
func (h *Handler) ListPayers(w http.ResponseWriter, r *http.Request) {
	var payers []*club.Payer
	err := h.uow.WithTx(r.Context(), func(stores club.Stores) error {
		var err error
		payers, err = stores.Payers.GetAll(r.Context())
		return err
	})
	if err != nil {
		writeDomainError(w, "failed to list payers", err)
		return
	}
	dtos := make([]PayerDTO, len(payers))
	for i, p := range payers {
		dtos[i] = toPayerDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePayer registers a new payer.
func (h *Handler) CreatePayer(w http.ResponseWriter, r *http.Request) {
	var req CreatePayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	var payer *club.Payer
	err := h.uow.WithTx(r.Context(), func(stores club.Stores) error {
		var err error
		payer, err = club.NewPayer(req.FirstName, req.SecondName, req.LastName)
		if err != nil {
			return err
		}
		return stores.Payers.Add(r.Context(), payer)
	})
	if err != nil {
		writeDomainError(w, "failed to create payer", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPayerDTO(payer))
}

// GetPayer returns a single payer.
func (h *Handler) GetPayer(w http.ResponseWriter, r *http.Request) {
	id := club.PayerID(chi.URLParam(r, "id"))
	var payer *club.Payer
	err := h.uow.WithTx(r.Context(), func(stores club.Stores) error {
		var err error
		payer, err = stores.Payers.GetByID(r.Context(), id)
		return err
	})
	if err != nil {
		writeDomainError(w, "failed to get payer", err)
		return
	}
	writeJSON(w, http.StatusOK, toPayerDTO(payer))
}

// RenamePayer updates the payer's name.
func (h *Handler) RenamePayer(w http.ResponseWriter, r *http.Request) {
	id := club.PayerID(chi.URLParam(r, "id"))
	var req RenamePayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	var payer *club.Payer
	err := h.uow.WithTx(r.Context(), func(stores club.Stores) error {
		var err error
		payer, err = stores.Payers.GetByID(r.Context(), id)
		if err != nil {
			return err
		}
		if err := payer.Rename(req.FirstName, req.SecondName, req.LastName); err != nil {
			return err
		}
		return stores.Payers.Update(r.Context(), payer)
	})
	if err != nil {
		writeDomainError(w, "failed to rename payer", err)
		return
	}
	writeJSON(w, http.StatusOK, toPayerDTO(payer))
}

// DeletePayer removes the payer and its athlete links.
func (h *Handler) DeletePayer(w http.ResponseWriter, r *http.Request) {
	id := club.PayerID(chi.URLParam(r, "id"))
	err := h.uow.WithTx(r.Context(), func(stores club.Stores) error {
		if _, err := stores.Payers.GetByID(r.Context(), id); err != nil {
			return err
		}
		return stores.Payers.Delete(r.Context(), id)
	})
	if err != nil {
		writeDomainError(w, "failed to delete payer", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PERIOD HANDLERS
// =============================================================================

// ListPeriods returns the whole fee schedule.
func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.periods.Periods(r.Context())
	if err != nil {
		writeDomainError(w, "failed to list periods", err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTOs(periods))
}

// CreateMissingPeriods creates every month of the range that does not exist
// yet, with the given base fee. Idempotent; responds with the created months.
func (h *Handler) CreateMissingPeriods(w http.ResponseWriter, r *http.Request) {
	var req PeriodRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	created, err := h.periods.CreateMissingPeriods(r.Context(), req.params())
	if err != nil {
		writeDomainError(w, "failed to create periods", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPeriodDTOs(created))
}

// UpdateExistingPeriods applies the base fee to every existing month in the
// range. Responds with all months that were in range.
func (h *Handler) UpdateExistingPeriods(w http.ResponseWriter, r *http.Request) {
	var req PeriodRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	updated, err := h.periods.UpdateExistingPeriods(r.Context(), req.params())
	if err != nil {
		writeDomainError(w, "failed to update periods", err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTOs(updated))
}

// GetFeeStatement returns the fee statement for one month.
func (h *Handler) GetFeeStatement(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}
	statement, err := h.periods.FeeStatement(r.Context(), year, month)
	if err != nil {
		writeDomainError(w, "failed to build fee statement", err)
		return
	}

	dto := FeeStatementDTO{
		Year:    statement.Period.Year,
		Month:   statement.Period.Month,
		BaseFee: statement.BaseFee,
		Lines:   make([]FeeLineDTO, len(statement.Lines)),
		Total:   statement.Total,
	}
	for i, line := range statement.Lines {
		dto.Lines[i] = FeeLineDTO{
			AthleteID:   string(line.AthleteID),
			AthleteName: line.AthleteName,
			Coefficient: line.Coefficient,
			Fee:         line.Fee,
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// SEED HANDLER
// =============================================================================

// SeedAthlete brings one athlete to the desired state - athlete, payer
// links and memberships - in a single transaction.
func (h *Handler) SeedAthlete(w http.ResponseWriter, r *http.Request) {
	var req SeedAthleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.seeder.SeedAthlete(r.Context(), req.input())
	if err != nil {
		writeDomainError(w, "failed to seed athlete", err)
		return
	}

	dto := SeedResultDTO{AthleteID: string(result.AthleteID)}
	for _, o := range result.Outcomes {
		dto.Outcomes = append(dto.Outcomes, SeedOutcomeDTO{
			Kind:   o.Kind,
			Name:   o.Name,
			Status: string(o.Status),
			Detail: o.Detail,
		})
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// BANK IMPORT HANDLERS
// =============================================================================

// UploadStatement accepts a bank statement CSV as multipart form data under
// the "file" field and runs the import pipeline on it.
func (h *Handler) UploadStatement(w http.ResponseWriter, r *http.Request) {
	const maxUpload = 10 << 20 // 10 MB
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form", err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field", err)
		return
	}
	defer file.Close()

	result, err := h.importer.Import(r.Context(), file, header.Filename)
	if err != nil {
		writeDomainError(w, "failed to import statement", err)
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, ImportResultDTO{
		Success:      result.Success,
		Message:      result.Message,
		ImportID:     result.ImportID,
		TotalRows:    result.TotalRows,
		SuccessCount: result.SuccessCount,
		SkippedCount: result.SkippedCount,
		ErrorCount:   result.ErrorCount,
	})
}

// ListImports returns the import history, newest first.
func (h *Handler) ListImports(w http.ResponseWriter, r *http.Request) {
	imports, err := h.imports.GetAll(r.Context())
	if err != nil {
		writeDomainError(w, "failed to list imports", err)
		return
	}
	dtos := make([]ImportDTO, len(imports))
	for i, imp := range imports {
		dtos[i] = ImportDTO{
			ID:           imp.ID,
			FileName:     imp.FileName,
			FileHash:     imp.FileHash,
			ImportDate:   imp.ImportDate.Format(time.RFC3339),
			TotalRows:    imp.TotalRows,
			SuccessCount: imp.SuccessCount,
			SkippedCount: imp.SkippedCount,
			ErrorCount:   imp.ErrorCount,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetImportDetails returns the per-row audit of one import.
func (h *Handler) GetImportDetails(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "id")
	details, err := h.imports.GetDetails(r.Context(), importID)
	if err != nil {
		writeDomainError(w, "failed to get import details", err)
		return
	}
	dtos := make([]ImportDetailDTO, len(details))
	for i, d := range details {
		dtos[i] = ImportDetailDTO{
			RowNumber:    d.RowNumber,
			Outcome:      string(d.Outcome),
			RawData:      d.RawData,
			ErrorMessage: d.ErrorMessage,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListBankTransactions returns imported transactions, newest first.
func (h *Handler) ListBankTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.bankTxs.GetAll(r.Context())
	if err != nil {
		writeDomainError(w, "failed to list transactions", err)
		return
	}
	dtos := make([]BankTransactionDTO, len(txs))
	for i, t := range txs {
		dtos[i] = BankTransactionDTO{
			OperationDate:  t.OperationDate.Format(time.RFC3339),
			PaymentDate:    t.PaymentDate.Format("2006-01-02"),
			CardLastDigits: t.CardLastDigits,
			Status:         t.Status,
			Amount:         t.Amount,
			Currency:       t.Currency,
			Cashback:       t.Cashback,
			Category:       t.Category,
			MCCCode:        t.MCCCode,
			Description:    t.Description,
			Processed:      t.Processed,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func toAthleteDTO(a *club.Athlete) AthleteDTO {
	dto := AthleteDTO{
		ID:          string(a.ID),
		FirstName:   a.FirstName,
		SecondName:  a.SecondName,
		LastName:    a.LastName,
		FullName:    a.FullName(),
		Created:     a.Created.Format(time.RFC3339),
		Payers:      []PayerLinkDTO{},
		Memberships: []MembershipDTO{},
	}
	if a.LastModified != nil {
		s := a.LastModified.Format(time.RFC3339)
		dto.LastModified = &s
	}
	for _, link := range a.Payers {
		dto.Payers = append(dto.Payers, PayerLinkDTO{
			PayerID: string(link.PayerID),
			Role:    string(link.Role),
		})
	}
	for _, m := range a.Memberships {
		dto.Memberships = append(dto.Memberships, MembershipDTO{
			Year:        m.Period.Year,
			Month:       m.Period.Month,
			Coefficient: m.Coefficient,
		})
	}
	return dto
}

func toPayerDTO(p *club.Payer) PayerDTO {
	return PayerDTO{
		ID:         string(p.ID),
		FirstName:  p.FirstName,
		SecondName: p.SecondName,
		LastName:   p.LastName,
		FullName:   p.FullName(),
	}
}

func toPeriodDTOs(periods []*club.MembershipPeriod) []PeriodDTO {
	dtos := make([]PeriodDTO, len(periods))
	for i, p := range periods {
		dtos[i] = PeriodDTO{Year: p.Year, Month: p.Month, BaseFee: p.BaseFee}
	}
	return dtos
}

// parseYearMonth pulls {year} and {month} route params. On failure it writes
// a 400 and returns ok=false.
func parseYearMonth(w http.ResponseWriter, r *http.Request) (year, month int, ok bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year", err)
		return 0, 0, false
	}
	month, err = strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", err)
		return 0, 0, false
	}
	return year, month, true
}

// writeDomainError maps domain errors onto HTTP status codes. Internal
// errors are logged but never leaked to the client.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case club.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, club.ErrDuplicateRelation):
		writeError(w, http.StatusConflict, message, err)
	case club.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		slog.Error("internal_error", "message", message, "err", err)
		writeError(w, http.StatusInternalServerError, message, nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
