package config

import "time"

// Default values for configuration
const (
	DefaultLogLevel           = "info"
	DefaultDBPath             = "userData.db"
	DefaultDBOperationTimeout = 15 * time.Second
	DefaultSendTimeout        = 10 * time.Second
)

// Task names known to the scheduler.
const (
	TaskSQLMaintenance = "sql_maintenance"
	TaskUnreadReminder = "unread_reminder"
)

var defaults = map[string]any{
	"logger.level": DefaultLogLevel,
	"logger.json":  true,

	"telegram.token":    "",
	"telegram.admin_id": "",

	"database.path": DefaultDBPath,

	"bot.db_operation_timeout": DefaultDBOperationTimeout,
	"bot.send_timeout":         DefaultSendTimeout,
	"bot.commands": []map[string]any{
		{"command": "start", "description": "Главное меню"},
		{"command": "admin", "description": "Статистика (только для администратора)"},
	},

	"messages.welcome": []string{
		"Ас Салам Алейкум! Я бот помощник канала @Khalsiratii!",
		"🧕 Предложка - тут ты можешь направить нам сообщение с вопросом или предложить новость для публикации на канале",
		"📲 Социальные сети - мы во всех социальных сетях",
		"📚 Полезные книги - полезные книги, которые укрепят твои знания",
	},
	"messages.menu_prompt":            "С чего начнем? Выбирай 👇",
	"messages.choose_action":          "Выберите действие:",
	"messages.choose_social":          "Выберите социальную сеть:",
	"messages.choose_promo":           "Выберите категорию книг:",
	"messages.suggestion_prompt":      "Опишите ваше предложение или сообщение, которое вы хотели бы отправить автору бота.",
	"messages.suggestion_sent":        "Ваше сообщение успешно отправлено автору бота",
	"messages.press_suggestion_first": "Пожалуйста, сначала нажмите кнопку \"Предложка\" для отправки сообщения автору канала!",
	"messages.unsupported_content":    "Такой тип сообщения не поддерживается. Отправьте текст, фото, видео, документ, аудио или голосовое сообщение.",
	"messages.admin_notify":           "Вам пришло сообщение. Неотвеченных сообщений: %d",
	"messages.unread_reminder":        "Неотвеченных сообщений: %d",
	"messages.reply_notice":           "На ваше сообщение получен ответ от админа канала.",
	"messages.reply_sent":             "Ответ направлен.",
	"messages.reply_prompt":           "Вы можете ответить текстом, аудио, видео или фото.",
	"messages.reply_button":           "Ответить",
	"messages.message_not_found":      "Сообщение не найдено.",
	"messages.no_messages":            "Сообщений нет.",
	"messages.no_unreplied":           "Сообщений без ответа нет.",
	"messages.sender_info":            "Сообщение от %s (@%s, ID: %d)",
	"messages.not_authorized":         "У вас нет прав администратора!",
	"messages.general_error":          "Произошла ошибка. Попробуйте позже.",

	"messages.stats.title":              "Статистика использования бота:",
	"messages.stats.total_starts":       "Всего запусков: %d",
	"messages.stats.today_starts":       "Использовали бота сегодня: %d",
	"messages.stats.total_interactions": "Всего взаимодействий: %d",
	"messages.stats.today_interactions": "Взаимодействий сегодня: %d",
	"messages.stats.social_header":      "Запросы на социальные сети:",
	"messages.stats.promo_header":       "Запросы на книги:",
	"messages.stats.category_line":      "%s - Всего: %d, Сегодня: %d",
	"messages.stats.unread":             "Неотвеченных сообщений: %d",

	"keywords.suggestion":   "🧕 Предложка",
	"keywords.social":       "📲 Социальные сети",
	"keywords.promo":        "📚 Полезные книги и источники",
	"keywords.back":         "Назад ↩️",
	"keywords.all_messages": "Все полученные сообщения",
	"keywords.unanswered":   "Сообщения без ответа",

	"catalog.social": []map[string]any{
		{"name": "Telegram", "url": "https://t.me/khalsiratii"},
		{"name": "Instagram", "url": "https://instagram.com/khalsirati?igsh=MzRlODBiNWFlZA=="},
	},
	"catalog.promo": []map[string]any{
		{
			"name":        "Хиджаб: Основные требования",
			"url":         "https://telegra.ph/Hidzhab-osnovnye-trebovaniya-10-06",
			"author":      "Khalsirati",
			"description": "Все о хиджабе, как правильное его носить и т.д",
			"pages":       "",
		},
		{
			"name":        "Вабиль: Благодатный дождь",
			"url":         "https://www.wildberries.ru/catalog/17234603/detail.aspx",
			"author":      "Имам Ибн Каййим аль-Джаузийя",
			"description": "Книга, которая предлагается вашему вниманию, представляет собой послание великого учёного имама Ибн аль-Каййима одному из своих братьев по вере...",
			"pages":       "432",
		},
	},

	"scheduler.tasks." + TaskSQLMaintenance + ".enabled":  true,
	"scheduler.tasks." + TaskSQLMaintenance + ".schedule": "0 0 4 * * *",
	"scheduler.tasks." + TaskUnreadReminder + ".enabled":  false,
	"scheduler.tasks." + TaskUnreadReminder + ".schedule": "0 0 9 * * *",
}
