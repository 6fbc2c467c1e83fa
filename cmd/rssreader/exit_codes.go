package main

import (
	"errors"
	"io/fs"

	"rssreader/internal/app"
	"rssreader/internal/config"
	"rssreader/internal/console"
	"rssreader/internal/usecase"
)

// Коды завершения CLI rssreader.
// Лента, не прошедшая проверку RSS 2.0, не ошибка: код ExitSuccess.
const (
	ExitSuccess = 0 // Конвертация выполнена или лента отклонена
	ExitGeneral = 1 // Ошибки структуры и все непредвиденное
	ExitUsage   = 2 // Неверные флаги, конфигурация или пустой ввод
	ExitIO      = 3 // Ошибки загрузки, разбора и файлов
)

var errUsage = errors.New("invalid usage")

// exitCodeFor возвращает код завершения для err. Ошибки должны оборачиваться через %w.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, errUsage) ||
		errors.Is(err, console.ErrNoInput) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) {
		return ExitUsage
	}
	if errors.Is(err, usecase.ErrFetch) ||
		errors.Is(err, usecase.ErrParse) ||
		errors.Is(err, app.ErrBatchFailed) ||
		errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrPermission) {
		return ExitIO
	}
	return ExitGeneral
}
