package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"somgil/internal/auth"
	"somgil/internal/catalog"
	"somgil/internal/config"
	"somgil/internal/events"
	"somgil/internal/metrics"
	"somgil/internal/models"
	"somgil/internal/pricing"
	"somgil/internal/reservation"
	"somgil/internal/review"
	"somgil/internal/session"
	"somgil/internal/somgilapi"
)

const usage = `usage: somgil <command> [flags]

commands:
  login         open the Kakao login flow and store the session
  logout        clear the stored session
  whoami        show the stored session, re-checking the token
  packages      list packages (-type TYPE | -recommended)
  package       show one package (-id N)
  reserve       submit a reservation (-id N -date YYYY-MM-DD -adults N ...)
  reservations  list your reservations
  review        submit a review (-reservation N -rating N -content TEXT)
  reviews       list your reviews
`

type app struct {
	cfg          *config.Config
	logger       zerolog.Logger
	client       *somgilapi.Client
	sessions     *session.Store
	gateway      *auth.Gateway
	catalog      *catalog.Service
	submitter    *reservation.Submitter
	reservations *reservation.Service
	reviews      *review.Service
}

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load(os.Getenv("SOMGIL_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.API.BaseURL == "" {
		logger.Fatal().Msg("set api.base_url in config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := buildApp(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize")
	}
	defer cleanup()

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if somgilapi.IsKind(err, somgilapi.KindAuthRequired) {
			fmt.Println("로그인이 필요합니다. `somgil login`을 실행해주세요.")
			os.Exit(1)
		}
		logger.Fatal().Err(err).Msg("command failed")
	}
}

func buildApp(cfg *config.Config, logger zerolog.Logger) (*app, func(), error) {
	cleanup := func() {}

	client := somgilapi.NewClient(cfg.API.BaseURL, cfg.APITimeout(), logger)
	client.UseRateLimit(cfg.API.RateLimit, cfg.API.RateBurst)

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if ttl := cfg.CacheTTL(); ttl > 0 {
			client.UseRedisCache(rdb, ttl)
		}
	}

	var storage session.Storage
	switch cfg.Session.Backend {
	case "redis":
		if rdb == nil {
			return nil, cleanup, fmt.Errorf("session backend is redis but redis.address is empty")
		}
		storage = session.NewRedisStorage(rdb)
	case "memory":
		storage = session.NewMemoryStorage()
	default:
		sqliteStorage, err := session.NewSQLiteStorage(cfg.Session.SQLitePath)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { _ = sqliteStorage.Close() }
		storage = sqliteStorage
	}

	bus := events.NewBus()
	bus.Subscribe(events.SessionChanged, func(event events.Event) {
		if sess, ok := event.Payload.(session.Session); ok && sess.LoggedIn {
			logger.Debug().Str("nickname", sess.Nickname).Msg("session changed: logged in")
		} else {
			logger.Debug().Msg("session changed: anonymous")
		}
	})

	sessions := session.NewStore(storage, bus, logger)
	gateway := auth.NewGateway(cfg.Kakao.RESTAPIKey, cfg.Kakao.RedirectURI, client, sessions, logger)

	return &app{
		cfg:          cfg,
		logger:       logger,
		client:       client,
		sessions:     sessions,
		gateway:      gateway,
		catalog:      catalog.NewService(client, logger),
		submitter:    reservation.NewSubmitter(client, sessions, bus, logger),
		reservations: reservation.NewService(client, sessions, logger),
		reviews:      review.NewService(client, sessions, logger),
	}, cleanup, nil
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx)
	case "logout":
		return a.sessions.Clear(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "packages":
		return a.listPackages(ctx, args)
	case "package":
		return a.packageDetail(ctx, args)
	case "reserve":
		return a.reserve(ctx, args)
	case "reservations":
		return a.listReservations(ctx)
	case "review":
		return a.submitReview(ctx, args)
	case "reviews":
		return a.listReviews(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// login serves the OAuth redirect URI locally and feeds every observed
// request URL to the gateway until one of them completes the exchange.
func (a *app) login(ctx context.Context) error {
	redirect, err := url.Parse(a.cfg.Kakao.RedirectURI)
	if err != nil {
		return fmt.Errorf("invalid kakao.redirect_uri: %w", err)
	}

	done := make(chan *auth.Landing, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		observed := "http://" + redirect.Host + r.URL.RequestURI()
		landing, obsErr := a.gateway.ObserveRedirect(r.Context(), observed)
		if landing == nil {
			http.NotFound(w, r)
			return
		}
		if obsErr != nil {
			fmt.Fprintln(w, "로그인에 실패했습니다. 터미널로 돌아가주세요.")
		} else {
			fmt.Fprintln(w, "로그인 완료! 터미널로 돌아가주세요.")
		}
		select {
		case done <- landing:
		default:
		}
	})

	srv := &http.Server{Addr: redirect.Host, Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error().Err(err).Msg("redirect server error")
		}
	}()

	fmt.Println("브라우저에서 아래 주소를 열어 로그인해주세요:")
	fmt.Println(a.gateway.AuthCodeURL())

	select {
	case landing := <-done:
		_ = srv.Close()
		sess, err := a.sessions.Get(ctx)
		if err != nil {
			return err
		}
		if !sess.LoggedIn {
			fmt.Println("로그인에 실패하여 비로그인 상태로 계속합니다.")
			return nil
		}
		fmt.Printf("%s님, 환영합니다!\n", sess.Nickname)
		if landing.Screen != auth.ScreenHome {
			fmt.Printf("이전 화면(%s)으로 돌아갑니다.\n", landing.Screen)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *app) whoami(ctx context.Context) error {
	sess, err := a.sessions.Validate(ctx, a.client)
	if err != nil {
		return err
	}
	if !sess.LoggedIn {
		fmt.Println("로그인되어 있지 않습니다.")
		return nil
	}
	fmt.Printf("닉네임: %s\n이메일: %s\n", sess.Nickname, sess.Email)
	return nil
}

func (a *app) listPackages(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("packages", flag.ExitOnError)
	typeFlag := fs.String("type", "", "package type (HEALING, COUPLE, ACTIVITY, RETRO, GOLMOK, LOCAL, THEME, SHIP)")
	recommended := fs.Bool("recommended", false, "show recommended packages")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var listing catalog.Listing
	var err error
	if *recommended || *typeFlag == "" {
		listing, err = a.catalog.Recommended(ctx)
	} else {
		packageType, parseErr := models.ParsePackageType(*typeFlag)
		if parseErr != nil {
			return parseErr
		}
		listing, err = a.catalog.ListByType(ctx, packageType)
	}
	if err != nil && len(listing.Packages) == 0 {
		return err
	}
	if err != nil {
		fmt.Println("목록을 새로 불러오지 못해 이전 목록을 표시합니다.")
	}
	if listing.Empty {
		fmt.Println("해당 타입의 패키지가 없습니다.")
		return nil
	}
	for _, pkg := range listing.Packages {
		fmt.Printf("[%d] %s  %d원  ★%.1f (%d)\n", pkg.ID, pkg.Name, pkg.Price, pkg.ReviewRating, pkg.ReviewCount)
	}
	return nil
}

func (a *app) packageDetail(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("package", flag.ExitOnError)
	id := fs.Int64("id", 0, "package id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("pass -id")
	}

	pkg, err := a.catalog.Detail(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n%s\n가격: %d원 (아동 %d원, 유아 무료)\n",
		pkg.Name, pkg.Type, pkg.Description, pkg.Price, pricing.ChildFare(pkg.Price))
	for _, course := range pkg.Courses {
		fmt.Printf("  - %s %s\n", course.Region, course.Name)
	}
	return nil
}

func (a *app) reserve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reserve", flag.ExitOnError)
	id := fs.Int64("id", 0, "package id")
	date := fs.String("date", "", "reservation date (YYYY-MM-DD)")
	adults := fs.String("adults", "0", "adult count")
	children := fs.String("children", "0", "child count")
	infants := fs.String("infants", "0", "infant count")
	optionsFlag := fs.String("options", "", "comma-separated add-on names")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("pass -id")
	}

	day, err := time.Parse(models.DateFormat, *date)
	if err != nil {
		return fmt.Errorf("invalid -date, want YYYY-MM-DD: %w", err)
	}

	pkg, err := a.catalog.Detail(ctx, *id)
	if err != nil {
		return err
	}

	selected := models.OptionSelection{}
	for _, name := range strings.Split(*optionsFlag, ",") {
		if name = strings.TrimSpace(name); name != "" {
			selected[name] = true
		}
	}

	order := reservation.Order{
		Package: *pkg,
		Party: models.PartyComposition{
			AdultCount:  models.ParseCount(*adults),
			ChildCount:  models.ParseCount(*children),
			InfantCount: models.ParseCount(*infants),
		},
		Options:  models.DefaultOptions(),
		Selected: selected,
		Date:     day,
	}

	fmt.Printf("총 가격: %d원\n", pricing.Total(pkg.Price, order.Party, order.Options, order.Selected))

	result := a.submitter.Submit(ctx, order)
	switch result.State {
	case reservation.StateSucceeded:
		fmt.Println("예약이 완료되었습니다. `somgil reservations`에서 확인할 수 있습니다.")
		return nil
	case reservation.StateAuthRequired:
		a.gateway.SetReturnTo("PackageOrder", map[string]string{"packageId": fmt.Sprint(*id)})
		return &somgilapi.Error{Kind: somgilapi.KindAuthRequired, Endpoint: "/api/reservation/approval"}
	default:
		fmt.Println("예약에 실패했습니다. 잠시 후 다시 시도해주세요.")
		return result.Err
	}
}

func (a *app) listReservations(ctx context.Context) error {
	reservations, err := a.reservations.List(ctx)
	if err != nil {
		return err
	}
	if len(reservations) == 0 {
		fmt.Println("예약 내역이 없습니다.")
		return nil
	}
	for _, r := range reservations {
		fmt.Printf("[%d] %s  %s  성인 %d, 아동 %d, 유아 %d  %d원  %s\n",
			r.ID, r.PackageName, r.ReservationDate,
			r.AdultCount, r.ChildCount, r.InfantCount, r.TotalPrice, r.Status)
	}
	return nil
}

func (a *app) submitReview(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("review", flag.ExitOnError)
	reservationID := fs.Int64("reservation", 0, "reservation id")
	rating := fs.Int("rating", 5, "rating 1..5")
	content := fs.String("content", "", "review text (10+ characters)")
	location := fs.String("location", "", "departure location")
	destination := fs.String("destination", "", "destination")
	if err := fs.Parse(args); err != nil {
		return err
	}

	draft := review.Draft{
		ReservationID: *reservationID,
		Content:       *content,
		Rating:        *rating,
		Location:      *location,
		Destination:   *destination,
	}
	if err := a.reviews.Submit(ctx, draft); err != nil {
		if somgilapi.IsKind(err, somgilapi.KindValidationFailure) {
			fmt.Println("리뷰를 10자 이상 작성해주세요.")
		}
		return err
	}
	fmt.Println("후기가 등록되었습니다!")
	return nil
}

func (a *app) listReviews(ctx context.Context) error {
	reviews, err := a.reviews.ListOwn(ctx)
	if err != nil {
		return err
	}
	if len(reviews) == 0 {
		fmt.Println("작성한 리뷰가 없습니다.")
		return nil
	}
	for _, r := range reviews {
		stars := strings.Repeat("★", r.Rating)
		fmt.Printf("%s  %s\n%s\n\n", r.Date, stars, r.Content)
	}
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
