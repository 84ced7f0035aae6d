package router

import (
	"time"

	"barcontrol/internal/config"
	"barcontrol/internal/handler"
	"barcontrol/internal/infra"
	"barcontrol/internal/middleware"
	"barcontrol/internal/model"
	"barcontrol/internal/repository"
	"barcontrol/internal/service"
	"barcontrol/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb may be nil; distributed locks and job queues are then skipped.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher, breaker *infra.Breaker) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute))

	loc := cfg.Location()
	txRunner := service.NewTxRunner(db, cfg.LockTimeout())

	var locker service.Locker
	if rdb != nil {
		locker = infra.NewLocker(rdb)
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	produtoRepo := repository.NewProdutoRepository(db)
	movRepo := repository.NewMovEstoqueRepository(db)
	comandaRepo := repository.NewComandaRepository(db)
	caixaRepo := repository.NewCaixaRepository(db)
	logRepo := repository.NewLogRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	estoqueSvc := service.NewEstoqueService(produtoRepo, movRepo, txRunner, dispatcher)
	produtoSvc := service.NewProdutoService(produtoRepo, estoqueSvc, txRunner)
	comandaSvc := service.NewComandaService(comandaRepo, caixaRepo, movRepo, estoqueSvc, txRunner, loc)
	caixaSvc := service.NewCaixaService(caixaRepo, estoqueSvc, txRunner, locker, loc)
	logSvc := service.NewLogService(logRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc, dispatcher)
	usuariosH := handler.NewUsuariosHandler(authSvc, dispatcher)
	produtosH := handler.NewProdutosHandler(produtoSvc, estoqueSvc, dispatcher)
	comandasH := handler.NewComandasHandler(comandaSvc, dispatcher)
	caixaH := handler.NewCaixaHandler(caixaSvc, dispatcher)
	logsH := handler.NewLogsHandler(logSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb, breaker))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	todos := middleware.RequireRole(model.RoleAdmin, model.RoleVendedor, model.RoleCaixa)
	admin := middleware.RequireRole(model.RoleAdmin)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		v1.GET("/produtos", todos, produtosH.Listar)
		v1.GET("/produtos/movimentos", admin, produtosH.Movimentos)
		v1.GET("/produtos/:id", todos, produtosH.Obter)
		v1.GET("/produtos/:id/componentes", todos, produtosH.ListarComponentes)
		prods := v1.Group("/produtos", admin)
		{
			prods.POST("", produtosH.Criar)
			prods.PUT("/:id", produtosH.Atualizar)
			prods.POST("/:id/componentes", produtosH.DefinirComponentes)
			prods.POST("/:id/entrada", produtosH.Entrada)
			prods.POST("/:id/saida", produtosH.Saida)
		}

		comandas := v1.Group("/comandas", middleware.RequireRole(model.RoleVendedor, model.RoleAdmin))
		{
			comandas.POST("", comandasH.Criar)
			comandas.GET("/abertas", comandasH.ListarAbertas)
			comandas.GET("/resumo-dia", comandasH.ResumoDia)
			comandas.GET("/:id", comandasH.Obter)
			comandas.GET("/:id/itens", comandasH.ListarItens)
			comandas.POST("/:id/itens", comandasH.AdicionarItem)
			comandas.DELETE("/itens/:item_id", comandasH.RemoverItem)
			comandas.POST("/:id/cancelar", comandasH.Cancelar)
			comandas.POST("/:id/finalizar", comandasH.Finalizar)
		}

		caixa := v1.Group("/caixa")
		{
			caixaOp := middleware.RequireRole(model.RoleCaixa, model.RoleAdmin)
			caixa.GET("/atual", todos, caixaH.Atual)
			caixa.POST("/abrir", todos, caixaH.Abrir)
			caixa.POST("/fechar", todos, caixaH.Fechar)
			caixa.GET("/movimentos", caixaOp, caixaH.ListarMovimentos)
			caixa.POST("/movimentos", caixaOp, caixaH.RegistrarMovimento)
			caixa.POST("/venda-balcao", caixaOp, caixaH.VendaBalcao)
			caixa.POST("/venda-balcao-lote", caixaOp, caixaH.VendaBalcaoLote)
		}

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Criar)
			usuarios.GET("", usuariosH.Listar)
		}

		v1.GET("/logs", admin, logsH.Listar)
	}

	// Swagger UI, development only
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
