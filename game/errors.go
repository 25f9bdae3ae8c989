package game

import "errors"

var (
	ErrRoomFull      = errors.New("방이 가득 찼습니다")
	ErrAlreadyJoined = errors.New("이미 참여 중입니다")
	ErrNotJoined     = errors.New("먼저 입장하세요")
	ErrNotHost       = errors.New("방장만 할 수 있습니다")
	ErrNotAllReady   = errors.New("모든 플레이어가 READY 상태여야 합니다")
	ErrNotEnough     = errors.New("플레이어가 부족합니다")
	ErrOutOfPhase    = errors.New("지금은 할 수 없는 동작입니다")
	ErrNotYourTurn   = errors.New("당신의 차례가 아닙니다")
	ErrEmptyWord     = errors.New("단어를 입력하세요")
	ErrMultiWord     = errors.New("공백 없는 단어만 제출 가능합니다")
	ErrEmptySecret   = errors.New("비밀 단어를 입력하세요")
	ErrChatClosed    = errors.New("지금은 대화할 수 없습니다")
	ErrUnknownEvent  = errors.New("알 수 없는 이벤트")
	ErrBadPayload    = errors.New("잘못된 요청 형식입니다")

	ErrNoSecretAvailable = errors.New("비밀 단어를 선택할 수 없습니다")
)
