package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowclub/membership-engine/api"
	"github.com/rowclub/membership-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := api.NewHandler(store, store.Transactions(), store.Imports(), nil)
	return api.NewRouter(h)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(into))
}

func createAthlete(t *testing.T, router http.Handler, first, last string) api.AthleteDTO {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/athletes", api.CreateAthleteRequest{
		FirstName: first, LastName: last,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var dto api.AthleteDTO
	decodeBody(t, rec, &dto)
	return dto
}

func createPayer(t *testing.T, router http.Handler, first, last string) api.PayerDTO {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/payers", api.CreatePayerRequest{
		FirstName: first, LastName: last,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var dto api.PayerDTO
	decodeBody(t, rec, &dto)
	return dto
}

func seedPeriods(t *testing.T, router http.Handler, fee int64, startYear, startMonth, endYear, endMonth int) {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/periods/missing", api.PeriodRangeRequest{
		BaseFee:    decimal.New(fee, 0),
		StartYear:  startYear,
		StartMonth: startMonth,
		EndYear:    endYear,
		EndMonth:   endMonth,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

// =============================================================================
// ATHLETES
// =============================================================================

func TestAthletes_CreateAndGet(t *testing.T) {
	router := newTestRouter(t)

	created := createAthlete(t, router, "Ivan", "Sidorov")
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Ivan Sidorov", created.FullName)

	rec := doJSON(t, router, http.MethodGet, "/api/athletes/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got api.AthleteDTO
	decodeBody(t, rec, &got)
	assert.Equal(t, created.ID, got.ID)
	assert.Empty(t, got.Payers)
	assert.Empty(t, got.Memberships)
}

func TestAthletes_DuplicateNameRejected(t *testing.T) {
	router := newTestRouter(t)
	createAthlete(t, router, "Ivan", "Sidorov")

	rec := doJSON(t, router, http.MethodPost, "/api/athletes", api.CreateAthleteRequest{
		FirstName: "Ivan", LastName: "Sidorov",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var errResp api.ErrorResponse
	decodeBody(t, rec, &errResp)
	assert.Contains(t, errResp.Details, "already exists")
}

func TestAthletes_BlankNameRejected(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/athletes", api.CreateAthleteRequest{
		FirstName: "", LastName: "Sidorov",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAthletes_NotFound(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/athletes/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAthletes_RenameAndDelete(t *testing.T) {
	router := newTestRouter(t)
	created := createAthlete(t, router, "Ivan", "Sidorov")

	rec := doJSON(t, router, http.MethodPut, "/api/athletes/"+created.ID, api.RenameAthleteRequest{
		FirstName: "Ivan", LastName: "Kuznetsov",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var renamed api.AthleteDTO
	decodeBody(t, rec, &renamed)
	assert.Equal(t, "Ivan Kuznetsov", renamed.FullName)
	assert.NotNil(t, renamed.LastModified)

	rec = doJSON(t, router, http.MethodDelete, "/api/athletes/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/athletes/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// PAYER LINKS
// =============================================================================

func TestPayerLinks_LinkAndConflict(t *testing.T) {
	router := newTestRouter(t)
	athlete := createAthlete(t, router, "Ivan", "Sidorov")
	payer := createPayer(t, router, "Olga", "Sidorova")

	link := api.LinkPayerRequest{PayerID: payer.ID, Role: "mother"}
	rec := doJSON(t, router, http.MethodPost, "/api/athletes/"+athlete.ID+"/payers", link)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got api.AthleteDTO
	decodeBody(t, rec, &got)
	require.Len(t, got.Payers, 1)
	assert.Equal(t, "mother", got.Payers[0].Role)

	// Same (payer, role) again conflicts
	rec = doJSON(t, router, http.MethodPost, "/api/athletes/"+athlete.ID+"/payers", link)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Unknown role is a client error
	rec = doJSON(t, router, http.MethodPost, "/api/athletes/"+athlete.ID+"/payers",
		api.LinkPayerRequest{PayerID: payer.ID, Role: "grandparent"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unlink
	rec = doJSON(t, router, http.MethodDelete,
		"/api/athletes/"+athlete.ID+"/payers/"+payer.ID+"/mother", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

// =============================================================================
// PERIODS AND MEMBERSHIPS
// =============================================================================

func TestPeriods_BulkOperators(t *testing.T) {
	router := newTestRouter(t)
	seedPeriods(t, router, 2000, 2025, 1, 2025, 4)

	// Idempotent: running again creates nothing new
	rec := doJSON(t, router, http.MethodPost, "/api/periods/missing", api.PeriodRangeRequest{
		BaseFee: decimal.New(2000, 0), StartYear: 2025, StartMonth: 1, EndYear: 2025, EndMonth: 4,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created []api.PeriodDTO
	decodeBody(t, rec, &created)
	assert.Empty(t, created)

	// Update a sub-range
	rec = doJSON(t, router, http.MethodPost, "/api/periods/existing", api.PeriodRangeRequest{
		BaseFee: decimal.New(2500, 0), StartYear: 2025, StartMonth: 2, EndYear: 2025, EndMonth: 3,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated []api.PeriodDTO
	decodeBody(t, rec, &updated)
	assert.Len(t, updated, 2)

	rec = doJSON(t, router, http.MethodGet, "/api/periods", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []api.PeriodDTO
	decodeBody(t, rec, &all)
	require.Len(t, all, 4)
	assert.True(t, all[0].BaseFee.Equal(decimal.New(2000, 0)))
	assert.True(t, all[1].BaseFee.Equal(decimal.New(2500, 0)))
}

func TestPeriods_InvalidRange(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/periods/missing", api.PeriodRangeRequest{
		BaseFee: decimal.New(2000, 0), StartYear: 2025, StartMonth: 4, EndYear: 2025, EndMonth: 1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMemberships_SetAndFee(t *testing.T) {
	router := newTestRouter(t)
	seedPeriods(t, router, 2000, 2025, 3, 2025, 3)
	athlete := createAthlete(t, router, "Ivan", "Sidorov")

	half, _ := decimal.NewFromString("0.5")
	rec := doJSON(t, router, http.MethodPut, "/api/athletes/"+athlete.ID+"/memberships",
		api.SetMembershipRequest{Year: 2025, Month: 3, Coefficient: half})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/athletes/%s/fee/2025/3", athlete.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fee api.FeeDTO
	decodeBody(t, rec, &fee)
	assert.True(t, fee.Fee.Equal(decimal.New(1000, 0)), "fee = %s", fee.Fee)
	assert.True(t, fee.BaseFee.Equal(decimal.New(2000, 0)))
}

func TestMemberships_InvalidCoefficientRejected(t *testing.T) {
	router := newTestRouter(t)
	seedPeriods(t, router, 2000, 2025, 3, 2025, 3)
	athlete := createAthlete(t, router, "Ivan", "Sidorov")

	bad, _ := decimal.NewFromString("0.4")
	rec := doJSON(t, router, http.MethodPut, "/api/athletes/"+athlete.ID+"/memberships",
		api.SetMembershipRequest{Year: 2025, Month: 3, Coefficient: bad})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMemberships_UnknownPeriodRejected(t *testing.T) {
	router := newTestRouter(t)
	athlete := createAthlete(t, router, "Ivan", "Sidorov")

	rec := doJSON(t, router, http.MethodPut, "/api/athletes/"+athlete.ID+"/memberships",
		api.SetMembershipRequest{Year: 2025, Month: 3, Coefficient: decimal.New(1, 0)})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFeeStatement_Endpoint(t *testing.T) {
	router := newTestRouter(t)
	seedPeriods(t, router, 2000, 2025, 3, 2025, 3)

	for _, name := range []struct{ last, coeff string }{
		{"Full", "1"}, {"Half", "0.5"},
	} {
		a := createAthlete(t, router, "Test", name.last)
		coeff, _ := decimal.NewFromString(name.coeff)
		rec := doJSON(t, router, http.MethodPut, "/api/athletes/"+a.ID+"/memberships",
			api.SetMembershipRequest{Year: 2025, Month: 3, Coefficient: coeff})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/periods/2025/3/fees", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var statement api.FeeStatementDTO
	decodeBody(t, rec, &statement)
	assert.Len(t, statement.Lines, 2)
	assert.True(t, statement.Total.Equal(decimal.New(3000, 0)), "total = %s", statement.Total)
}

// =============================================================================
// SEEDING
// =============================================================================

func TestSeedAthlete_Endpoint(t *testing.T) {
	router := newTestRouter(t)
	seedPeriods(t, router, 2000, 2025, 3, 2025, 3)

	half, _ := decimal.NewFromString("0.5")
	req := api.SeedAthleteRequest{
		FirstName: "Ivan",
		LastName:  "Sidorov",
		Payers: []api.SeedPayerRequest{
			{FirstName: "Olga", LastName: "Sidorova", Role: "mother"},
		},
		Memberships: []api.SeedMembershipRequest{
			{Year: 2025, Month: 3, Coefficient: half},
		},
	}

	rec := doJSON(t, router, http.MethodPost, "/api/seed/athletes", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result api.SeedResultDTO
	decodeBody(t, rec, &result)
	assert.NotEmpty(t, result.AthleteID)
	assert.NotEmpty(t, result.Outcomes)

	// Seeding against a missing period fails with 400
	req.Memberships[0].Year = 2030
	rec = doJSON(t, router, http.MethodPost, "/api/seed/athletes", req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// BANK IMPORTS
// =============================================================================

func uploadStatement(t *testing.T, router http.Handler, name, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/bank/imports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestBankImport_Upload(t *testing.T) {
	router := newTestRouter(t)

	content := strings.Join([]string{
		"Operation date;Payment date;Card;Status;Amount;Currency;Payment amount;Payment currency;Cashback;Category;MCC;Description;Bonus;Round-up;Amount with round-up",
		"01.03.2025 10:30:00;01.03.2025;*1234;OK;2000,00;RUB;2000,00;RUB;;Transfers;4829;Membership fee;0;0;2000,00",
	}, "\n")

	rec := uploadStatement(t, router, "march.csv", content)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result api.ImportResultDTO
	decodeBody(t, rec, &result)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.SuccessCount)

	// Import history and audit trail
	rec = doJSON(t, router, http.MethodGet, "/api/bank/imports", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var imports []api.ImportDTO
	decodeBody(t, rec, &imports)
	require.Len(t, imports, 1)

	rec = doJSON(t, router, http.MethodGet, "/api/bank/imports/"+imports[0].ID+"/details", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var details []api.ImportDetailDTO
	decodeBody(t, rec, &details)
	require.Len(t, details, 1)
	assert.Equal(t, "success", details[0].Outcome)

	rec = doJSON(t, router, http.MethodGet, "/api/bank/transactions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var txs []api.BankTransactionDTO
	decodeBody(t, rec, &txs)
	assert.Len(t, txs, 1)
}

func TestBankImport_MissingFileField(t *testing.T) {
	router := newTestRouter(t)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/bank/imports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
