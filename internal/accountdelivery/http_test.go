package accountdelivery

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
)

// Routes are registered with method values of the handler returned by NewHandler.
var _ interface {
	Create(*gin.Context)
	List(*gin.Context)
} = NewHandler(nil)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("notblank", NotBlank); err != nil {
			panic(err)
		}
	}

	os.Exit(m.Run())
}

func randomAccount() domain.Account {
	return domain.Account{
		Identifier: "PK" + randompkg.Digits(2) + "DL01" + randompkg.Digits(12),
		HolderName: randompkg.HolderName(),
		Balance:    randompkg.MoneyAmountBetween(0, 1000),
		CreatedAt:  time.Now().Truncate(time.Second).UTC(),
	}
}

type response struct {
	Identifier string           `json:"identifier"`
	Message    string           `json:"message"`
	Accounts   []domain.Account `json:"accounts"`
	Error      string           `json:"error"`
	Code       string           `json:"code"`
}

func TestCreate(t *testing.T) {
	account := randomAccount()

	testCases := []struct {
		name           string
		requestBody    string
		buildStubs     func(accountService *MockService)
		wantStatusCode int
		wantError      string
		wantCode       string
	}{
		{
			name:        "OK",
			requestBody: `{"holderName":"` + account.HolderName + `"}`,
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					Create(gomock.Any(), gomock.Eq(account.HolderName)).
					Times(1).
					Return(account, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:        "MissingHolderName",
			requestBody: `{}`,
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "HolderName field is required",
			wantCode:       errorspkg.CodeValidation,
		},
		{
			name:        "BlankHolderName",
			requestBody: `{"holderName":"   "}`,
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "HolderName must not be blank",
			wantCode:       errorspkg.CodeValidation,
		},
		{
			name:        "HolderNameTooLong",
			requestBody: `{"holderName":"` + strings.Repeat("a", 101) + `"}`,
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "HolderName must be at most 100 characters long",
			wantCode:       errorspkg.CodeValidation,
		},
		{
			name:        "HolderNameNotString",
			requestBody: `{"holderName":42}`,
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "malformed request body",
			wantCode:       errorspkg.CodeValidation,
		},
		{
			name:        "StorageError",
			requestBody: `{"holderName":"` + account.HolderName + `"}`,
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					Create(gomock.Any(), gomock.Eq(account.HolderName)).
					Times(1).
					Return(domain.Account{}, errorspkg.ErrStorage)
			},
			wantStatusCode: http.StatusServiceUnavailable,
			wantError:      errorspkg.ErrStorage.Error(),
			wantCode:       errorspkg.CodeStorage,
		},
		{
			name:        "InternalError",
			requestBody: `{"holderName":"` + account.HolderName + `"}`,
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					Create(gomock.Any(), gomock.Eq(account.HolderName)).
					Times(1).
					Return(domain.Account{}, errors.New("boom"))
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
			wantCode:       errorspkg.CodeInternal,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			accountService := NewMockService(ctrl)
			accountHandler := NewHandler(accountService)

			server := gin.New()
			server.POST("/api/accounts/create", accountHandler.Create)

			tc.buildStubs(accountService)

			req, err := http.NewRequest(http.MethodPost, "/api/accounts/create", bytes.NewBufferString(tc.requestBody))
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			var res response
			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if tc.wantStatusCode != http.StatusOK {
				if res.Error != tc.wantError {
					t.Errorf(`res.Error=%q, want %q`, res.Error, tc.wantError)
				}

				if res.Code != tc.wantCode {
					t.Errorf(`res.Code=%q, want %q`, res.Code, tc.wantCode)
				}

				return
			}

			if res.Identifier != account.Identifier {
				t.Errorf(`res.Identifier=%q, want %q`, res.Identifier, account.Identifier)
			}

			if want := "Account created for " + account.HolderName; res.Message != want {
				t.Errorf(`res.Message=%q, want %q`, res.Message, want)
			}
		})
	}
}

func TestList(t *testing.T) {
	accounts := []domain.Account{randomAccount(), randomAccount()}

	testCases := []struct {
		name           string
		buildStubs     func(accountService *MockService)
		wantStatusCode int
		want           []domain.Account
		wantCode       string
	}{
		{
			name: "OK",
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().List(gomock.Any()).Times(1).Return(accounts, nil)
			},
			wantStatusCode: http.StatusOK,
			want:           accounts,
		},
		{
			name: "Empty",
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().List(gomock.Any()).Times(1).Return([]domain.Account{}, nil)
			},
			wantStatusCode: http.StatusOK,
			want:           []domain.Account{},
		},
		{
			name: "StorageError",
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().List(gomock.Any()).Times(1).Return(nil, errorspkg.ErrStorage)
			},
			wantStatusCode: http.StatusServiceUnavailable,
			wantCode:       errorspkg.CodeStorage,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			accountService := NewMockService(ctrl)
			accountHandler := NewHandler(accountService)

			server := gin.New()
			server.GET("/api/accounts", accountHandler.List)

			tc.buildStubs(accountService)

			req, err := http.NewRequest(http.MethodGet, "/api/accounts", nil)
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			var res response
			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if tc.wantStatusCode != http.StatusOK {
				if res.Code != tc.wantCode {
					t.Errorf(`res.Code=%q, want %q`, res.Code, tc.wantCode)
				}

				return
			}

			opts := []cmp.Option{
				cmpopts.EquateApproxTime(time.Second),
				cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
			}
			if diff := cmp.Diff(tc.want, res.Accounts, opts...); diff != "" {
				t.Errorf("res.Accounts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
