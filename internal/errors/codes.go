package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL
// 클라이언트는 이 코드를 기준으로 메시지를 매핑함

const (
	// ==================== 인증 (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"         // 로그인 필요
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"        // 토큰 만료
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"        // 잘못된 토큰
	AuthUserNotProvisioned = "AUTH_USER_NOT_PROVISIONED" // 인증은 되었으나 로컬 사용자 없음
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"         // 이메일 중복

	// ==================== 인가/권한 (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"  // 접근 권한 없음
	AuthzOwnerOnly = "AUTHZ_OWNER_ONLY" // 소유자만 가능

	// ==================== 검증 (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // 잘못된 입력
	ValidationInvalidID    = "VALIDATION_INVALID_ID"    // 잘못된 ID
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE" // 범위 초과
	ValidationRequired     = "VALIDATION_REQUIRED"      // 필수 항목

	// ==================== 리소스 (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // 리소스 없음
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // 이미 존재
	ResourceConflict      = "RESOURCE_CONFLICT"       // 충돌

	// ==================== 카페 (CAFE_) ====================
	CafeNotFound = "CAFE_NOT_FOUND" // 카페 없음

	// ==================== 리뷰 (REVIEW_) ====================
	ReviewNotFound      = "REVIEW_NOT_FOUND"      // 리뷰 없음
	ReviewInvalidRating = "REVIEW_INVALID_RATING" // 잘못된 평점
	ReviewAlreadyExists = "REVIEW_ALREADY_EXISTS" // 이미 리뷰 작성함

	// ==================== 사용자/팔로우 (USER_) ====================
	UserNotFound        = "USER_NOT_FOUND"        // 사용자 없음
	UserSelfFollow      = "USER_SELF_FOLLOW"      // 자기 자신 팔로우
	FollowNotFound      = "FOLLOW_NOT_FOUND"      // 팔로우 관계 없음
	FollowAlreadyExists = "FOLLOW_ALREADY_EXISTS" // 이미 팔로우 중

	// ==================== 메뉴 (MENU_) ====================
	MenuItemNotFound = "MENU_ITEM_NOT_FOUND" // 메뉴 항목 없음

	// ==================== 알림 (NOTIFICATION_) ====================
	NotificationNotFound = "NOTIFICATION_NOT_FOUND" // 알림 없음

	// ==================== 업로드 (UPLOAD_) ====================
	UploadInvalidType   = "UPLOAD_INVALID_TYPE"   // 허용되지 않는 파일 형식
	UploadInvalidFolder = "UPLOAD_INVALID_FOLDER" // 허용되지 않는 폴더

	// ==================== 서버 (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR" // 서버 오류
	InternalDatabase    = "INTERNAL_DATABASE"     // DB 오류
	InternalExternalAPI = "INTERNAL_EXTERNAL_API" // 외부 API(장소 검색) 오류
)
