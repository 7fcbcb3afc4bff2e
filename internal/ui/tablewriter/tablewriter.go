package tablewriter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// TableWriter 表格写入器
// 用于 CLI 的账户列表和交易历史输出：固定列集合，
// 行数据按列名从 map 中取值，缺失的列输出为空
type TableWriter struct {
	cols []string
	rows []map[string]string
}

// New 按列名创建表格写入器
func New(cols ...string) *TableWriter {
	return &TableWriter{cols: cols}
}

// Write 写入一行数据
// 只保留已声明列的值，其余键被忽略
func (w *TableWriter) Write(r map[string]interface{}) {
	row := make(map[string]string, len(w.cols))
	for _, col := range w.cols {
		if v, ok := r[col]; ok {
			row[col] = fmt.Sprint(v)
		}
	}
	w.rows = append(w.rows, row)
}

// Flush 将表头和全部行输出到指定的写入器
// 使用 tabwriter 按列对齐
func (w *TableWriter) Flush(out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, strings.Join(w.cols, "\t")); err != nil {
		return err
	}

	fields := make([]string, len(w.cols))
	for _, row := range w.rows {
		for i, col := range w.cols {
			fields[i] = row[col]
		}
		if _, err := fmt.Fprintln(tw, strings.Join(fields, "\t")); err != nil {
			return err
		}
	}

	return tw.Flush()
}
