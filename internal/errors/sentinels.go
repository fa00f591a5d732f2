package errors

// Хранилище и конкурентный доступ
var (
	ErrStatusConflict  = Conflict("project was modified concurrently")
	ErrPaymentConflict = Conflict("payment was modified concurrently")
	ErrPayoutConflict  = Conflict("payout was modified concurrently")
)

// Сущности
var (
	ErrProjectNotFound      = NotFound("project not found")
	ErrUserNotFound         = NotFound("user not found")
	ErrEditorNotFound       = NotFound("editor not found")
	ErrPackageNotFound      = NotFound("package not found")
	ErrPaymentNotFound      = NotFound("payment not found")
	ErrPayoutNotFound       = NotFound("payout not found")
	ErrNotificationNotFound = NotFound("notification not found")
	ErrMessageNotFound      = NotFound("message not found")
	ErrUploadNotFound       = NotFound("upload not found")
	ErrRefreshTokenNotFound = NotFound("refresh token not found")
)

// Жизненный цикл проекта
var (
	ErrRevisionQuotaExceeded = QuotaExceeded("revision limit reached for this project")
	ErrWorkloadExceeded      = QuotaExceeded("editor has reached maximum concurrent projects")
	ErrEditorNotAvailable    = InvalidState("editor is not available for assignment")
	ErrAlreadyRated          = InvalidState("project has already been rated")
	ErrNotProjectOwner       = Forbidden("you do not have access to this project")
	ErrAccessDenied          = Forbidden("access denied")
)

// Платежи
var (
	ErrInvalidSignature    = Unauthorized("payment signature verification failed")
	ErrNothingToPay        = InvalidState("project is already fully paid")
	ErrPaymentExceedsDue   = InvalidState("payment exceeds the outstanding project balance")
	ErrRefundExceedsAmount = Validation("refund amount exceeds payment amount")
	ErrNoPayoutAccount     = InvalidState("editor has no payout account configured")
	ErrNoEligibleProjects  = InvalidState("no eligible projects for payout")
)

// Аутентификация
var (
	ErrInvalidCredentials           = Unauthorized("invalid credentials")
	ErrEmailAlreadyExists           = Conflict("email already exists")
	ErrUserDeactivated              = Forbidden("user account is deactivated")
	ErrFailedToGenerateAccessToken  = New(KindInternal, "failed to generate access token")
	ErrFailedToGenerateRefreshToken = New(KindInternal, "failed to generate refresh token")
	ErrFailedToGenerateNewTokens    = New(KindInternal, "failed to generate new tokens")
	ErrUnexpectedSigningMethod      = Unauthorized("unexpected signing method")
	ErrFailedToParseToken           = Unauthorized("failed to parse token")
	ErrInvalidToken                 = Unauthorized("invalid token")
	ErrInvalidRefreshToken          = Unauthorized("invalid refresh token")
	ErrAuthHeaderEmpty              = Unauthorized("authorization header is required")
	ErrAuthHeaderWrongFormat        = Unauthorized("authorization header format must be Bearer {token}")
	ErrUserRoleNotFoundInContext    = Forbidden("user role not found in context")
)

// Управление учетными записями
var (
	ErrCannotManageSelf     = Forbidden("administrators cannot suspend or delete their own account")
	ErrUserHasProjects      = InvalidState("user has projects and cannot be deleted, suspend the account instead")
	ErrSuspendReasonMissing = Validation("reason is required when suspending an account")
)

// Инициализация приложения
var (
	ErrFailedToConnectYDB        = New(KindInternal, "failed to connect to YDB")
	ErrJWTSecretKeyNotConfigured = New(KindInternal, "JWT secret key is not configured")
	ErrFailedToInitStorageClient = New(KindInternal, "failed to initialize storage client")
	ErrFailedToInitQueue         = New(KindInternal, "failed to initialize notification queue")
)
