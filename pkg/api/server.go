package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"

	"github.com/uhyunpark/swapguard/pkg/app/core"
	"github.com/uhyunpark/swapguard/pkg/app/core/asset"
	"github.com/uhyunpark/swapguard/pkg/app/core/fixed"
	"github.com/uhyunpark/swapguard/pkg/app/core/swap"
	"github.com/uhyunpark/swapguard/pkg/metrics"
	"github.com/uhyunpark/swapguard/pkg/storage"
	"github.com/uhyunpark/swapguard/pkg/util"
)

const (
	defaultDecisionLimit = 50
	maxDecisionLimit     = 500

	requestIDHeader = "X-Request-ID"
)

var errBadRequest = errors.New("bad request")

// Options wires the server to its collaborators. Validator and Catalog are
// required; everything else has a usable default.
type Options struct {
	Validator      *swap.Validator
	Catalog        *asset.Catalog
	Network        asset.Network
	Store          storage.DecisionStore
	Metrics        *metrics.Metrics
	Clock          util.Clock
	Logger         *zap.SugaredLogger
	AllowedOrigins []string
}

// Server provides the HTTP REST API and WebSocket feed
type Server struct {
	validator *swap.Validator
	catalog   *asset.Catalog
	network   asset.Network
	store     storage.DecisionStore
	metrics   *metrics.Metrics
	clock     util.Clock
	log       *zap.SugaredLogger
	origins   []string

	router *mux.Router
	hub    *Hub
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	s := &Server{
		validator: opts.Validator,
		catalog:   opts.Catalog,
		network:   opts.Network,
		store:     opts.Store,
		metrics:   opts.Metrics,
		clock:     opts.Clock,
		log:       opts.Logger,
		origins:   opts.AllowedOrigins,
		router:    mux.NewRouter(),
	}
	if s.store == nil {
		s.store = storage.NewInMemoryDecisionStore()
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.clock == nil {
		s.clock = util.RealClock{}
	}
	if s.log == nil {
		s.log = zap.NewNop().Sugar()
	}
	s.hub = NewHub(s.log)

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.Use(s.requestID)
	api.Use(s.metrics.Middleware)

	// Catalog
	api.HandleFunc("/assets", s.handleGetAssets).Methods("GET")
	api.HandleFunc("/assets/{symbol}", s.handleGetAsset).Methods("GET")
	api.HandleFunc("/networks", s.handleGetNetworks).Methods("GET")

	// Slippage
	api.HandleFunc("/classify", s.handleClassify).Methods("POST")
	api.HandleFunc("/bounds", s.handleBounds).Methods("POST")
	api.HandleFunc("/validate", s.handleValidate).Methods("POST")

	// Journal
	api.HandleFunc("/decisions/{base}/{quote}", s.handleGetDecisions).Methods("GET")
	api.HandleFunc("/decision/{id}", s.handleGetDecision).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// Handler returns the router wrapped with CORS
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
	})
	return c.Handler(s.router)
}

// Hub exposes the WebSocket hub so callers can run it outside Start.
func (s *Server) Hub() *Hub { return s.hub }

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	go s.hub.Run(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("api_listening", "addr", addr, "network", s.network.String())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown api: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := util.ContextWithRequestID(r.Context(), r.Header.Get(requestIDHeader))
		w.Header().Set(requestIDHeader, util.RequestIDFromContext(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ==============================
// Catalog Handlers
// ==============================

// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, HealthResponse{
		Status:  "ok",
		Network: s.network.String(),
		Assets:  s.catalog.Count(),
	})
}

// GET /api/v1/assets
func (s *Server) handleGetAssets(w http.ResponseWriter, r *http.Request) {
	list := s.catalog.List()
	infos := make([]AssetInfo, len(list))
	for i, a := range list {
		infos[i] = s.assetInfo(a)
	}
	respondJSON(w, infos)
}

// GET /api/v1/assets/{symbol}
func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	a, err := s.catalog.BySymbol(symbol)
	if err != nil {
		respondError(w, http.StatusNotFound, "asset not found", swap.Code(swap.ErrUnknownAsset), symbol)
		return
	}
	respondJSON(w, s.assetInfo(a))
}

// GET /api/v1/networks
func (s *Server) handleGetNetworks(w http.ResponseWriter, r *http.Request) {
	infos := make([]NetworkInfo, len(asset.Networks))
	for i, n := range asset.Networks {
		infos[i] = NetworkInfo{Name: n.String(), Current: n == s.network}
	}
	respondJSON(w, infos)
}

func (s *Server) assetInfo(a asset.Asset) AssetInfo {
	info := AssetInfo{
		ID:       a.ID,
		Symbol:   a.Symbol,
		Name:     a.Name,
		Exponent: a.Exponent,
		OneUnit:  a.OneUnit().String(),
		Algo:     a.Algo.String(),
		UnitName: a.UnitName,
		Prefix:   a.Prefix,
		Pot:      a.Pot,
		MinStake: a.MinStake.String(),
		MaxStake: a.MaxStake.String(),
	}
	if chain, ok := s.catalog.BaseChainOf(a.ID); ok {
		info.BaseChain = chain.Symbol
	}
	if id, ok := a.ChainIDs[s.network]; ok {
		info.ChainID = &id
	}
	if addr, ok := a.Routers[s.network]; ok {
		info.Router = addr.Hex()
	}
	if addr, ok := a.Multisigs[s.network]; ok {
		info.Multisig = addr.Hex()
	}
	if addr, ok := a.Contracts[s.network]; ok {
		info.Contract = addr.Hex()
	}
	return info
}

// ==============================
// Slippage Handlers
// ==============================

// POST /api/v1/classify
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "bad_request", err.Error())
		return
	}
	pair, order, err := s.parsePairOrder(req.Pair, req.Order)
	if err != nil {
		respondSwapError(w, err)
		return
	}
	selling, err := s.validator.IsSelling(pair, order)
	if err != nil {
		respondSwapError(w, err)
		return
	}
	respondJSON(w, ClassifyResponse{Selling: selling})
}

// POST /api/v1/bounds
func (s *Server) handleBounds(w http.ResponseWriter, r *http.Request) {
	var req BoundsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "bad_request", err.Error())
		return
	}
	pair, order, err := s.parsePairOrder(req.Pair, req.Order)
	if err != nil {
		respondSwapError(w, err)
		return
	}

	lower, lowerErr := s.validator.LowerBound(order, pair)
	upper, upperErr := s.validator.UpperBound(order, pair)

	// A missing bound on the other side is expected; anything else fails the request.
	for _, e := range []error{lowerErr, upperErr} {
		if e != nil && !errors.Is(e, swap.ErrNoLowerBoundForBuyingPrice) && !errors.Is(e, swap.ErrNoUpperBoundForSellingPrice) {
			respondSwapError(w, e)
			return
		}
	}

	var resp BoundsResponse
	if lowerErr != nil {
		resp.LowerBoundError = swap.Code(lowerErr)
	} else {
		resp.LowerBound = lower.String()
	}
	if upperErr != nil {
		resp.UpperBoundError = swap.Code(upperErr)
	} else {
		resp.UpperBound = upper.String()
	}
	respondJSON(w, resp)
}

// POST /api/v1/validate
//
// A rejected fill is still a successful request: the decision is journaled,
// broadcast and returned with accepted=false.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "bad_request", err.Error())
		return
	}

	pair, taker, err := s.parsePairOrder(req.Pair, req.Taker)
	if err != nil {
		respondSwapError(w, err)
		return
	}
	maker, err := s.parseOrder(req.Maker)
	if err != nil {
		respondSwapError(w, err)
		return
	}

	var fill swap.FillProposal
	var proposalErr error
	if req.Confirmation != nil {
		conf, err := parseConfirmation(*req.Confirmation)
		if err != nil {
			respondSwapError(w, err)
			return
		}
		// a taker outside the pair is journaled as a rejected, unpriced decision
		fill, proposalErr = conf.Proposal(taker, pair)
	} else {
		if fill.Base, err = parseBalance("offeredBase", req.OfferedBase); err != nil {
			respondSwapError(w, err)
			return
		}
		if fill.Quote, err = parseBalance("offeredQuote", req.OfferedQuote); err != nil {
			respondSwapError(w, err)
			return
		}
	}

	start := time.Now()
	var (
		offered *fixed.Price
		verr    = proposalErr
	)
	if proposalErr == nil {
		offered, verr = s.validator.Evaluate(taker, maker, pair, fill.Base, fill.Quote)
	}
	took := time.Since(start)

	reqID := util.RequestIDFromContext(r.Context())
	symbol := core.PairSymbol(s.catalog, pair)
	ts := s.clock.Now().UnixMilli()
	d := &storage.Decision{
		ID:           storage.DecisionID(symbol, reqID, taker.ID, maker.ID, fill.Base, fill.Quote, ts),
		Pair:         symbol,
		TakerID:      taker.ID,
		MakerID:      maker.ID,
		OfferedBase:  fill.Base,
		OfferedQuote: fill.Quote,
		Price:        offered,
		Accepted:     verr == nil,
		Code:         swap.Code(verr),
		Timestamp:    ts,
	}
	if verr != nil {
		d.Message = verr.Error()
	}

	s.metrics.ObserveValidation(symbol, d.Code, took)
	if err := s.store.SaveDecision(d); err != nil {
		s.log.Errorw("decision_save_failed", "request_id", reqID, "decision_id", d.ID.Hex(), "err", err)
	}
	s.broadcastDecision(d)

	s.log.Infow("swap_validated",
		"request_id", reqID,
		"pair", symbol,
		"taker", taker.ID.Hex(),
		"maker", maker.ID.Hex(),
		"accepted", d.Accepted,
		"code", d.Code,
	)

	resp := ValidateResponse{
		DecisionID: d.ID.Hex(),
		Accepted:   d.Accepted,
		Code:       d.Code,
		Message:    d.Message,
		Timestamp:  d.Timestamp,
	}
	if d.Price != nil {
		resp.Price = d.Price.String()
	}
	respondJSON(w, resp)
}

// ==============================
// Journal Handlers
// ==============================

// GET /api/v1/decisions/{base}/{quote}?limit=N
func (s *Server) handleGetDecisions(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	pair, err := core.ParsePair(s.catalog, vars["base"], vars["quote"])
	if err != nil {
		respondSwapError(w, err)
		return
	}

	limit := defaultDecisionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid limit", "bad_request", raw)
			return
		}
		limit = min(n, maxDecisionLimit)
	}

	decisions, err := s.store.LoadRecentDecisions(core.PairSymbol(s.catalog, pair), limit)
	if err != nil {
		s.log.Errorw("decision_load_failed", "request_id", util.RequestIDFromContext(r.Context()), "err", err)
		respondError(w, http.StatusInternalServerError, "failed to load decisions", "internal", "")
		return
	}
	if decisions == nil {
		decisions = []*storage.Decision{}
	}
	respondJSON(w, decisions)
}

// GET /api/v1/decision/{id}
func (s *Server) handleGetDecision(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["id"]
	id, err := parseHash(raw)
	if err != nil {
		respondSwapError(w, err)
		return
	}
	d, err := s.store.GetDecision(id)
	if err != nil {
		s.log.Errorw("decision_load_failed", "request_id", util.RequestIDFromContext(r.Context()), "err", err)
		respondError(w, http.StatusInternalServerError, "failed to load decision", "internal", "")
		return
	}
	if d == nil {
		respondError(w, http.StatusNotFound, "decision not found", "not_found", raw)
		return
	}
	respondJSON(w, d)
}

func (s *Server) broadcastDecision(d *storage.Decision) {
	channel := "decisions:" + d.Pair
	s.hub.BroadcastToChannel(channel, WSMessage{Channel: channel, Data: d})
}

// ==============================
// Request Parsing
// ==============================

func (s *Server) parsePairOrder(p PairRequest, o OrderRequest) (swap.MarketPair, swap.Order, error) {
	pair, err := core.ParsePair(s.catalog, p.Base, p.Quote)
	if err != nil {
		return swap.MarketPair{}, swap.Order{}, err
	}
	order, err := s.parseOrder(o)
	if err != nil {
		return swap.MarketPair{}, swap.Order{}, err
	}
	return pair, order, nil
}

func (s *Server) parseOrder(req OrderRequest) (swap.Order, error) {
	from, err := s.catalog.BySymbol(req.TokenFrom)
	if err != nil {
		return swap.Order{}, fmt.Errorf("%w: %s", swap.ErrUnknownAsset, req.TokenFrom)
	}
	to, err := s.catalog.BySymbol(req.TokenTo)
	if err != nil {
		return swap.Order{}, fmt.Errorf("%w: %s", swap.ErrUnknownAsset, req.TokenTo)
	}

	order := swap.Order{
		IsMarketMaker: req.IsMarketMaker,
		TokenFrom:     from.ID,
		TokenTo:       to.ID,
		Status:        swap.Pending,
	}
	if order.AmountFrom, err = parseBalance("amountFrom", req.AmountFrom); err != nil {
		return swap.Order{}, err
	}
	if order.AmountTo, err = parseBalance("amountTo", req.AmountTo); err != nil {
		return swap.Order{}, err
	}
	if req.Slippage != "" {
		if order.Slippage, err = fixed.ParsePermill(req.Slippage); err != nil {
			return swap.Order{}, fmt.Errorf("%w: slippage: %v", errBadRequest, err)
		}
	}
	if req.Type != "" {
		if err := order.Type.UnmarshalText([]byte(req.Type)); err != nil {
			return swap.Order{}, fmt.Errorf("%w: type: %v", errBadRequest, err)
		}
	}
	if req.Account != "" {
		if !common.IsHexAddress(req.Account) {
			return swap.Order{}, fmt.Errorf("%w: account %q", errBadRequest, req.Account)
		}
		order.Account = common.HexToAddress(req.Account)
	}
	if req.ID != "" {
		if order.ID, err = parseHash(req.ID); err != nil {
			return swap.Order{}, err
		}
	} else {
		order.ID = orderHash(req)
	}
	return order, nil
}

func parseConfirmation(req ConfirmationRequest) (swap.Confirmation, error) {
	var (
		conf swap.Confirmation
		err  error
	)
	if req.RequestID != "" {
		if conf.RequestID, err = parseHash(req.RequestID); err != nil {
			return swap.Confirmation{}, err
		}
	}
	if conf.AmountToReceive, err = parseBalance("amountToReceive", req.AmountToReceive); err != nil {
		return swap.Confirmation{}, err
	}
	if conf.AmountToSend, err = parseBalance("amountToSend", req.AmountToSend); err != nil {
		return swap.Confirmation{}, err
	}
	return conf, nil
}

func parseBalance(field, raw string) (fixed.Balance, error) {
	b, err := fixed.ParseBalance(raw)
	if err != nil {
		return fixed.Balance{}, fmt.Errorf("%w: %s: %v", errBadRequest, field, err)
	}
	return b, nil
}

func parseHash(raw string) (common.Hash, error) {
	b, err := hexutil.Decode(raw)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: hash %q", errBadRequest, raw)
	}
	return common.BytesToHash(b), nil
}

// orderHash derives a stable id for orders submitted without one.
func orderHash(req OrderRequest) common.Hash {
	data, _ := json.Marshal(req)
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return common.BytesToHash(h.Sum(nil))
}

// ==============================
// Helper Functions
// ==============================

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, error string, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Code:    code,
		Message: message,
	})
}

func respondSwapError(w http.ResponseWriter, err error) {
	code := swap.Code(err)
	if code == "internal" && errors.Is(err, errBadRequest) {
		code = "bad_request"
	}
	respondError(w, statusFor(code), http.StatusText(statusFor(code)), code, err.Error())
}

func statusFor(code string) int {
	switch code {
	case "bad_request",
		swap.Code(swap.ErrUnknownAsset),
		swap.Code(swap.ErrUnknownAssetInMarketPair),
		swap.Code(swap.ErrSameAssetMarketPair):
		return http.StatusBadRequest
	case swap.Code(swap.ErrSlippageOverflow),
		swap.Code(swap.ErrArithmetic),
		swap.Code(swap.ErrNoLowerBoundForBuyingPrice),
		swap.Code(swap.ErrNoUpperBoundForSellingPrice):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
