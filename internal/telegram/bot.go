package telegram

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"uni-meal-planner/internal/config"
	"uni-meal-planner/internal/export"
	"uni-meal-planner/internal/history"
	"uni-meal-planner/internal/metrics"
	"uni-meal-planner/internal/planner"
	"uni-meal-planner/internal/shopping"
)

const helpText = `🥗 *Daily fuel planner*

/plan [tournament|classes|rest] — plan today with the stock schedule
/targets [tournament|classes|rest] — just the daily targets
/export [csv|json] — download the latest plan
/groceries [days] — grocery list from recent plans
/history — recent plans
/status — bot health

Send a day file (YAML) to plan a custom day, and use the 🔄 buttons
under a plan to swap a meal.`

// Bot wraps the Telegram API around the planner, history store and
// exporters.
type Bot struct {
	api       *tgbotapi.BotAPI
	planner   *planner.Planner
	store     *history.Store
	collector *metrics.Collector
	cfg       *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(
	cfg *config.Config,
	p *planner.Planner,
	store *history.Store,
	collector *metrics.Collector,
) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:       bot,
		planner:   p,
		store:     store,
		collector: collector,
		cfg:       cfg,
	}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.CallbackQuery != nil {
		if !b.allowed(update.CallbackQuery.From) {
			return
		}
		go b.handleCallbackQuery(update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}
	if !b.allowed(update.Message.From) {
		return
	}

	go b.processMessage(update.Message)
}

// allowed enforces the single-user allow list. An unset ID leaves the bot
// open, which is only sensible for local testing.
func (b *Bot) allowed(from *tgbotapi.User) bool {
	if from == nil {
		return false
	}
	if b.cfg.TelegramAllowUserID == 0 || from.ID == b.cfg.TelegramAllowUserID {
		return true
	}
	log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", from.ID, from.UserName)
	return false
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	if msg.Document != nil {
		b.handleDayFile(msg)
		return
	}

	switch msg.Command() {
	case "plan":
		b.handlePlan(msg)
	case "targets":
		b.handleTargets(msg)
	case "export":
		b.handleExport(msg)
	case "groceries":
		b.handleGroceries(msg)
	case "history":
		b.handleHistory(msg)
	case "status":
		b.handleStatus(msg)
	default:
		b.sendMarkdown(msg.Chat.ID, helpText)
	}
}

// stockDayFile builds the day description for /plan and /targets: today,
// stock profile, stock training layout for the requested day type.
func stockDayFile(dayType string) config.DayFile {
	return config.DayFile{
		DayType:         strings.TrimSpace(dayType),
		DefaultSessions: true,
	}
}

func (b *Bot) handlePlan(msg *tgbotapi.Message) {
	day := stockDayFile(msg.CommandArguments())
	req, err := day.PlanRequest()
	if err != nil {
		b.sendMarkdown(msg.Chat.ID, formatError("Error reading the day", err))
		return
	}

	sent, err := b.api.Send(markdownMessage(msg.Chat.ID, "🧑‍🍳 *Planning your day...*"))
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	b.generateAndSendPlan(msg.Chat.ID, sent.MessageID, req)
}

func (b *Bot) handleTargets(msg *tgbotapi.Message) {
	day := stockDayFile(msg.CommandArguments())
	req, err := day.PlanRequest()
	if err != nil {
		b.sendMarkdown(msg.Chat.ID, formatError("Error reading the day", err))
		return
	}

	targets, err := planner.EstimateDailyTargets(req.WeightKg, req.HeightCm, req.Age, req.Sex, req.ActivityLevel, req.Goal, req.Sessions)
	if err != nil {
		b.sendMarkdown(msg.Chat.ID, formatError("Error estimating targets", err))
		return
	}

	b.sendMarkdown(msg.Chat.ID, formatTargetsMarkdown(targets))
}

func (b *Bot) handleDayFile(msg *tgbotapi.Message) {
	doc := msg.Document
	if doc.FileSize > 256*1024 {
		b.sendMarkdown(msg.Chat.ID, "❌ That file is too large for a day description.")
		return
	}

	sent, err := b.api.Send(markdownMessage(msg.Chat.ID, "🧑‍🍳 *Planning your day...*"))
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	data, err := b.downloadFile(doc.FileID)
	if err != nil {
		b.editMarkdown(msg.Chat.ID, sent.MessageID, formatError("Error fetching the day file", err))
		return
	}

	day, err := config.ParseDayFile(data)
	if err != nil {
		b.editMarkdown(msg.Chat.ID, sent.MessageID, formatError("Error parsing the day file", err))
		return
	}
	req, err := day.PlanRequest()
	if err != nil {
		b.editMarkdown(msg.Chat.ID, sent.MessageID, formatError("Error reading the day", err))
		return
	}

	b.generateAndSendPlan(msg.Chat.ID, sent.MessageID, req)
}

func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %w", err)
	}
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	purpose, slotTime, ok := parseSwapCallback(query.Data)
	if !ok {
		return
	}

	// Answer callback to remove spinner
	b.api.Request(tgbotapi.NewCallback(query.ID, ""))

	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	b.editMarkdown(chatID, messageID, "🔄 *Swapping that meal...*")

	entry, err := b.store.Latest(chatID)
	if err != nil {
		b.editMarkdown(chatID, messageID, formatError("Error loading the plan", err))
		return
	}

	exclude := ""
	for _, meal := range entry.Plan.Meals {
		if string(meal.Purpose) == purpose && meal.Time.Format(time.RFC3339) == slotTime {
			exclude = meal.Template
			break
		}
	}

	req := entry.Request
	req.Swap = &planner.SwapDirective{
		Purpose:         planner.Purpose(purpose),
		Time:            slotTime,
		ExcludeTemplate: exclude,
	}
	if b.collector != nil {
		b.collector.RecordSwap()
	}

	b.generateAndSendPlan(chatID, messageID, req)
}

func (b *Bot) generateAndSendPlan(chatID int64, messageID int, req planner.PlanRequest) {
	start := time.Now()
	plan, err := b.planner.GenerateDailyPlan(req)
	if err != nil {
		if b.collector != nil {
			b.collector.RecordPlanFailure()
		}
		log.Printf("Error generating plan: %v", err)
		b.editMarkdown(chatID, messageID, formatError("Error generating plan", err))
		return
	}
	if b.collector != nil {
		b.collector.RecordPlan(time.Since(start))
	}

	if _, err := b.store.Save(chatID, req, plan); err != nil {
		log.Printf("Warning: failed to save plan for chat %d: %v", chatID, err)
	}

	edit := tgbotapi.NewEditMessageText(chatID, messageID, formatPlanMarkdown(plan))
	edit.ParseMode = "Markdown"
	keyboard := swapKeyboard(plan)
	edit.ReplyMarkup = &keyboard
	b.api.Send(edit)
}

func (b *Bot) handleExport(msg *tgbotapi.Message) {
	format := strings.ToLower(strings.TrimSpace(msg.CommandArguments()))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		b.sendMarkdown(msg.Chat.ID, "❌ Use `/export csv` or `/export json`.")
		return
	}

	entry, err := b.store.Latest(msg.Chat.ID)
	if err != nil {
		b.sendMarkdown(msg.Chat.ID, formatError("No plan to export", err))
		return
	}

	var data []byte
	if format == "csv" {
		data, err = export.CSV(&entry.Plan)
	} else {
		data, err = export.JSON(&entry.Plan)
	}
	if err != nil {
		b.sendMarkdown(msg.Chat.ID, formatError("Error exporting plan", err))
		return
	}

	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{
		Name:  export.Filename(entry.Request.Wake, format),
		Bytes: data,
	})
	if _, err := b.api.Send(doc); err != nil {
		log.Printf("Failed to send export: %v", err)
	}
}

func (b *Bot) handleGroceries(msg *tgbotapi.Message) {
	days := 1
	if args := strings.TrimSpace(msg.CommandArguments()); args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n < 1 || n > 14 {
			b.sendMarkdown(msg.Chat.ID, "❌ Use `/groceries` or `/groceries <1-14>`.")
			return
		}
		days = n
	}

	entries, err := b.store.ListRecent(msg.Chat.ID, days)
	if err != nil {
		b.sendMarkdown(msg.Chat.ID, formatError("Error loading plans", err))
		return
	}
	if len(entries) == 0 {
		b.sendMarkdown(msg.Chat.ID, "No plans yet. Generate one with /plan first.")
		return
	}

	plans := make([]*planner.DailyPlan, 0, len(entries))
	for _, e := range entries {
		plans = append(plans, &e.Plan)
	}
	items := shopping.BuildList(plans...)

	reply := tgbotapi.NewMessage(msg.Chat.ID, shopping.FormatList(items))
	b.api.Send(reply)
}

func (b *Bot) handleHistory(msg *tgbotapi.Message) {
	entries, err := b.store.ListRecent(msg.Chat.ID, 5)
	if err != nil {
		b.sendMarkdown(msg.Chat.ID, formatError("Error loading history", err))
		return
	}
	b.sendMarkdown(msg.Chat.ID, formatHistoryMarkdown(entries))
}

func (b *Bot) handleStatus(msg *tgbotapi.Message) {
	health := metrics.GetSysHealth(b.cfg.DatabasePath, b.cfg.FoodsPath, b.cfg.TemplatesPath)

	var sb strings.Builder
	sb.WriteString("📊 *Bot Health*\n\n")
	sb.WriteString(fmt.Sprintf("• Catalog: %d foods, %d templates\n", len(b.planner.Foods()), len(b.planner.Templates())))
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• GC cycles: %d\n", health.NumGC))
	sb.WriteString(fmt.Sprintf("• Data on disk: %s\n", health.DataSize))
	b.sendMarkdown(msg.Chat.ID, sb.String())
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	if _, err := b.api.Send(markdownMessage(chatID, text)); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func (b *Bot) editMarkdown(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = "Markdown"
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Failed to edit message: %v", err)
	}
}

func markdownMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	return msg
}

func formatError(prefix string, err error) string {
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	return fmt.Sprintf("❌ *%s:*\n```\n%v\n```", prefix, safeErr)
}

func formatTargetsMarkdown(t planner.Targets) string {
	var sb strings.Builder
	sb.WriteString("🎯 *Daily Targets*\n\n")
	sb.WriteString(fmt.Sprintf("• Energy: %.0f kcal", t.Kcal))
	if t.SessionKcal > 0 {
		sb.WriteString(fmt.Sprintf(" (incl. %.0f from training)", t.SessionKcal))
	}
	sb.WriteString("\n")
	if t.BMR > 0 {
		sb.WriteString(fmt.Sprintf("• BMR: %.0f kcal\n", t.BMR))
	}
	sb.WriteString(fmt.Sprintf("• Carbs: %.0f g · Protein: %.0f g · Fat: %.0f g\n", t.CarbsG, t.ProteinG, t.FatG))
	sb.WriteString(fmt.Sprintf("• Water: %d ml", t.WaterML))
	if t.TrainingWaterML > 0 {
		sb.WriteString(fmt.Sprintf(" (base %.0f + training %.0f)", t.BaselineWaterML, t.TrainingWaterML))
	}
	sb.WriteString("\n")
	return sb.String()
}

func formatPlanMarkdown(plan *planner.DailyPlan) string {
	var sb strings.Builder

	sb.WriteString("📅 *Daily Plan")
	if len(plan.Meals) > 0 {
		sb.WriteString(" — " + plan.Meals[0].Time.Format("Mon 2 Jan"))
	}
	sb.WriteString("*\n")
	sb.WriteString(fmt.Sprintf("🎯 %.0f kcal · C %.0fg · P %.0fg · F %.0fg · 💧 %d ml\n",
		plan.Targets.Kcal, plan.Targets.CarbsG, plan.Targets.ProteinG, plan.Targets.FatG, plan.Targets.WaterML))
	if plan.Targets.BMR > 0 {
		sb.WriteString(fmt.Sprintf("🔥 BMR %.0f kcal", plan.Targets.BMR))
		if plan.Targets.SessionKcal > 0 {
			sb.WriteString(fmt.Sprintf(" · training burn %.0f kcal", plan.Targets.SessionKcal))
		}
		sb.WriteString("\n")
	}
	var onPlate planner.MacroTotals
	for _, meal := range plan.Meals {
		onPlate.Kcal += meal.Totals.Kcal
		onPlate.Carbs += meal.Totals.Carbs
		onPlate.Protein += meal.Totals.Protein
		onPlate.Fat += meal.Totals.Fat
	}
	sb.WriteString(fmt.Sprintf("⚖️ On the plate: %.0f kcal · C %.0fg · P %.0fg · F %.0fg\n\n",
		onPlate.Kcal, onPlate.Carbs, onPlate.Protein, onPlate.Fat))

	for _, meal := range plan.Meals {
		sb.WriteString(fmt.Sprintf("*%s %s* · %.0f kcal\n", meal.Time.Format("15:04"), meal.Label, meal.Totals.Kcal))
		if meal.Template != "" {
			sb.WriteString(fmt.Sprintf("🍽 %s\n", meal.Template))
		}
		for _, item := range meal.Items {
			sb.WriteString(fmt.Sprintf("• %s (%sg)\n", item.Name, strconv.FormatFloat(item.Grams, 'f', -1, 64)))
		}
		if meal.Note != "" {
			sb.WriteString(fmt.Sprintf("_%s_\n", meal.Note))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("💧 *Hydration*\n")
	if plan.Targets.TrainingWaterML > 0 {
		sb.WriteString(fmt.Sprintf("_Baseline %.0f ml · training add-on %.0f ml_\n",
			plan.Targets.BaselineWaterML, plan.Targets.TrainingWaterML))
	}
	for _, h := range plan.Hydration {
		sb.WriteString(fmt.Sprintf("• %s — %s (%d ml)\n", h.Time.Format("15:04"), h.Label, h.ML))
	}

	return sb.String()
}

func formatHistoryMarkdown(entries []*history.Entry) string {
	if len(entries) == 0 {
		return "No plans yet. Generate one with /plan first."
	}

	var sb strings.Builder
	sb.WriteString("🗓 *Recent plans*\n\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("• *%s* — %.0f kcal, %d meals (seed %d)\n",
			e.PlanDate, e.Plan.Targets.Kcal, len(e.Plan.Meals), e.Seed))
	}
	return sb.String()
}

// swapCallbackData encodes a swap button payload. Callback data is limited
// to 64 bytes, so only the purpose and slot time travel with the button.
func swapCallbackData(meal planner.Meal) string {
	return fmt.Sprintf("swap|%s|%s", meal.Purpose, meal.Time.Format(time.RFC3339))
}

func parseSwapCallback(data string) (purpose, slotTime string, ok bool) {
	parts := strings.Split(data, "|")
	if len(parts) != 3 || parts[0] != "swap" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// swapKeyboard builds one 🔄 button per meal, two per row.
func swapKeyboard(plan *planner.DailyPlan) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, meal := range plan.Meals {
		label := fmt.Sprintf("🔄 %s %s", meal.Label, meal.Time.Format("15:04"))
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, swapCallbackData(meal)))
		if len(row) == 2 {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
