package familydelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pr-poehali-dev/yugan-bank-registration/internal/domain"
	"github.com/pr-poehali-dev/yugan-bank-registration/internal/middleware"
	"github.com/pr-poehali-dev/yugan-bank-registration/pkg/randompkg"
	"github.com/pr-poehali-dev/yugan-bank-registration/pkg/tokenpkg"
)

func TestFamilyAPI(t *testing.T) {
	testPhone := randompkg.Phone()

	owner := domain.Account{
		Phone:         testPhone,
		Name:          randompkg.Name(),
		FamilyCode:    "AB12CD",
		FamilyMembers: []domain.FamilyMember{},
	}
	member := domain.Account{
		Phone:      randompkg.Phone(),
		Name:       randompkg.Name(),
		FamilyCode: "AB12CD",
	}

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	familyService := NewMockService(ctrl)
	familyHandler := NewHandler(familyService)

	gin.SetMode(gin.ReleaseMode)
	server := gin.New()

	authRoutes := server.Group("/").Use(middleware.AuthMiddleware(tokenMaker))
	authRoutes.POST("/family", familyHandler.Create)
	authRoutes.POST("/family/join", familyHandler.Join)
	authRoutes.GET("/family", familyHandler.View)

	auth := func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
		middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthorizationTypeBearer, testPhone, time.Minute)
	}

	testCases := []struct {
		name          string
		method        string
		url           string
		requestBody   gin.H
		setupAuth     func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker)
		buildStubs    func(familyService *MockService)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name:   "CreateNoAuthorization",
			method: http.MethodPost,
			url:    "/family",
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
			},
			buildStubs: func(familyService *MockService) {
				familyService.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
		{
			name:      "CreateOK",
			method:    http.MethodPost,
			url:       "/family",
			setupAuth: auth,
			buildStubs: func(familyService *MockService) {
				familyService.EXPECT().Create(gomock.Any(), gomock.Eq(testPhone)).
					Times(1).
					Return(owner, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)

				var got struct {
					Data struct {
						Account domain.Account `json:"account"`
					} `json:"data"`
				}

				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
				require.Equal(t, "AB12CD", got.Data.Account.FamilyCode)
				require.NotNil(t, got.Data.Account.FamilyMembers)
			},
		},
		{
			name:        "JoinBadCodeLength",
			method:      http.MethodPost,
			url:         "/family/join",
			requestBody: gin.H{"code": "AB1"},
			setupAuth:   auth,
			buildStubs: func(familyService *MockService) {
				familyService.EXPECT().Join(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name:        "JoinUnknownCode",
			method:      http.MethodPost,
			url:         "/family/join",
			requestBody: gin.H{"code": "ZZZZZZ"},
			setupAuth:   auth,
			buildStubs: func(familyService *MockService) {
				familyService.EXPECT().Join(gomock.Any(), gomock.Eq(testPhone), gomock.Eq("ZZZZZZ")).
					Times(1).
					Return(domain.Account{}, domain.ErrFamilyCodeNotFound)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusNotFound, recorder.Code)
			},
		},
		{
			name:        "JoinOK",
			method:      http.MethodPost,
			url:         "/family/join",
			requestBody: gin.H{"code": "AB12CD"},
			setupAuth:   auth,
			buildStubs: func(familyService *MockService) {
				joined := member
				joined.Phone = testPhone

				familyService.EXPECT().Join(gomock.Any(), gomock.Eq(testPhone), gomock.Eq("AB12CD")).
					Times(1).
					Return(joined, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
			},
		},
		{
			name:      "ViewOK",
			method:    http.MethodGet,
			url:       "/family",
			setupAuth: auth,
			buildStubs: func(familyService *MockService) {
				familyService.EXPECT().View(gomock.Any(), gomock.Eq(testPhone)).
					Times(1).
					Return([]domain.Account{owner, member}, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)

				var got struct {
					Data struct {
						Accounts []domain.Account `json:"accounts"`
					} `json:"data"`
				}

				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
				require.Len(t, got.Data.Accounts, 2)
				require.Equal(t, owner.Phone, got.Data.Accounts[0].Phone)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			tc.buildStubs(familyService)

			recorder := httptest.NewRecorder()

			var body *bytes.Reader
			if tc.requestBody != nil {
				b, err := json.Marshal(tc.requestBody)
				require.NoError(t, err)
				body = bytes.NewReader(b)
			} else {
				body = bytes.NewReader(nil)
			}

			request, err := http.NewRequest(tc.method, tc.url, body)
			require.NoError(t, err)

			tc.setupAuth(t, request, tokenMaker)
			server.ServeHTTP(recorder, request)
			tc.checkResponse(recorder)
		})
	}
}
